package dto

import (
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/catalogs/product"
)

// CreateProductRequest is the request body for creating a product.
// Stock on hand is intentionally absent: balances change only through
// stock operations.
type CreateProductRequest struct {
	Code             string         `json:"code"`
	Name             string         `json:"name" binding:"required"`
	Reference        *string        `json:"reference"`
	CategoryID       *id.ID         `json:"categoryId"`
	BaseUnitID       id.ID          `json:"baseUnitId" binding:"required"`
	AltUnitID        *id.ID         `json:"altUnitId"`
	ConversionFactor int64          `json:"conversionFactor"`
	UnitPrice        types.Money    `json:"unitPrice"`
	ReorderThreshold types.Quantity `json:"reorderThreshold"`
	Description      *string        `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.BaseUnitID)
	p.Reference = r.Reference
	p.CategoryID = r.CategoryID
	p.AltUnitID = r.AltUnitID
	p.ConversionFactor = r.ConversionFactor
	if !r.UnitPrice.IsZero() {
		p.UnitPrice = r.UnitPrice
	}
	p.ReorderThreshold = r.ReorderThreshold
	p.Description = r.Description
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code             string         `json:"code"`
	Name             string         `json:"name" binding:"required"`
	Reference        *string        `json:"reference"`
	CategoryID       *id.ID         `json:"categoryId"`
	BaseUnitID       id.ID          `json:"baseUnitId" binding:"required"`
	AltUnitID        *id.ID         `json:"altUnitId"`
	ConversionFactor int64          `json:"conversionFactor"`
	UnitPrice        types.Money    `json:"unitPrice"`
	ReorderThreshold types.Quantity `json:"reorderThreshold"`
	Description      *string        `json:"description"`
	Version          int            `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
// StockOnHand is left untouched; the service rejects direct changes anyway.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.Reference = r.Reference
	p.CategoryID = r.CategoryID
	p.BaseUnitID = r.BaseUnitID
	p.AltUnitID = r.AltUnitID
	p.ConversionFactor = r.ConversionFactor
	p.UnitPrice = r.UnitPrice
	p.ReorderThreshold = r.ReorderThreshold
	p.Description = r.Description
	p.Version = r.Version
}
