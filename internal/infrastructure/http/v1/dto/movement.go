package dto

import (
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/ledger"
	"stockroom/internal/domain/movements"
)

// CreateMovementRequest is the request body for creating a stock entry or
// exit. The direction comes from the route, not the body.
type CreateMovementRequest struct {
	Date       time.Time      `json:"date"`
	Kind       movements.Kind `json:"kind" binding:"required"`
	ProductID  id.ID          `json:"productId" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	UnitID     id.ID          `json:"unitId" binding:"required"`
	SupplierID *id.ID         `json:"supplierId"`
	CustomerID *id.ID         `json:"customerId"`
	Comment    string         `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateMovementRequest) ToEntity(direction ledger.Direction) *movements.Movement {
	m := movements.NewMovement(direction, r.Kind, r.ProductID, r.UnitID, r.Quantity)
	if !r.Date.IsZero() {
		m.Date = r.Date
	}
	m.SupplierID = r.SupplierID
	m.CustomerID = r.CustomerID
	m.Comment = r.Comment
	return m
}

// UpdateMovementRequest is the request body for editing a movement.
// Number, direction, and activity are immutable.
type UpdateMovementRequest struct {
	Date       time.Time      `json:"date"`
	Kind       movements.Kind `json:"kind" binding:"required"`
	ProductID  id.ID          `json:"productId" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	UnitID     id.ID          `json:"unitId" binding:"required"`
	SupplierID *id.ID         `json:"supplierId"`
	CustomerID *id.ID         `json:"customerId"`
	Comment    string         `json:"comment"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMovementRequest) ApplyTo(m *movements.Movement) {
	if !r.Date.IsZero() {
		m.Date = r.Date
	}
	m.Kind = r.Kind
	m.ProductID = r.ProductID
	m.Quantity = r.Quantity
	m.UnitID = r.UnitID
	m.SupplierID = r.SupplierID
	m.CustomerID = r.CustomerID
	m.Comment = r.Comment
}
