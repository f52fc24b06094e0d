package dto

import (
	"stockroom/internal/domain/catalogs/unit"
)

// CreateUnitRequest is the request body for creating a unit.
type CreateUnitRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Symbol      string  `json:"symbol" binding:"required"`
	Description *string `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateUnitRequest) ToEntity() *unit.Unit {
	u := unit.NewUnit(r.Code, r.Name, r.Symbol)
	u.Description = r.Description
	return u
}

// UpdateUnitRequest is the request body for updating a unit.
type UpdateUnitRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Symbol      string  `json:"symbol" binding:"required"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateUnitRequest) ApplyTo(u *unit.Unit) {
	u.Code = r.Code
	u.Name = r.Name
	u.Symbol = r.Symbol
	u.Description = r.Description
	u.Version = r.Version
}
