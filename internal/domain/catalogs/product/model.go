// Package product provides the Product catalog.
// A product carries its stock balance and the unit conversion rules used by
// every stock-affecting operation.
package product

import (
	"context"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// Product represents a stocked item.
//
// Stock is always held in the base unit. An optional alternative unit
// (e.g. carton of 12 pieces) converts to the base unit by an integer factor.
type Product struct {
	entity.Catalog

	// Reference is the item article/SKU
	Reference *string `db:"reference" json:"reference,omitempty"`

	// CategoryID groups the product for browsing and reporting
	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`

	// BaseUnitID is the unit stock is counted in (required)
	BaseUnitID id.ID `db:"base_unit_id" json:"baseUnitId"`

	// AltUnitID is an optional alternative input unit
	AltUnitID *id.ID `db:"alt_unit_id" json:"altUnitId,omitempty"`

	// ConversionFactor is the number of base units per alternative unit.
	// Only meaningful when AltUnitID is set; must be a positive integer.
	ConversionFactor int64 `db:"conversion_factor" json:"conversionFactor"`

	// UnitPrice is the default selling price per base unit
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// ReorderThreshold triggers the low-stock report
	ReorderThreshold types.Quantity `db:"reorder_threshold" json:"reorderThreshold"`

	// StockOnHand is the current balance in base units.
	// Mutated only through the ledger under a row lock, never directly.
	StockOnHand types.Quantity `db:"stock_on_hand" json:"stockOnHand"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, baseUnitID id.ID) *Product {
	return &Product{
		Catalog:    entity.NewCatalog(code, name),
		BaseUnitID: baseUnitID,
		UnitPrice:  types.Zero(),
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.BaseUnitID) {
		return apperror.NewValidation("base unit is required").
			WithDetail("field", "baseUnitId")
	}

	if p.AltUnitID != nil {
		if *p.AltUnitID == p.BaseUnitID {
			return apperror.NewValidation("alternative unit must differ from base unit").
				WithDetail("field", "altUnitId")
		}
		if p.ConversionFactor <= 0 {
			return apperror.NewInvalidConversionFactor(p.ConversionFactor)
		}
	}

	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}

	if p.ReorderThreshold.IsNegative() {
		return apperror.NewValidation("reorder threshold cannot be negative").
			WithDetail("field", "reorderThreshold")
	}

	if p.StockOnHand.IsNegative() {
		return apperror.NewNegativeStock(p.ID.String())
	}

	return nil
}

// ConvertToBase converts a quantity expressed in unitID to base units.
//
// The base unit passes through unchanged. The alternative unit multiplies by
// the conversion factor. Any other unit is not convertible.
func (p *Product) ConvertToBase(qty types.Quantity, unitID id.ID) (types.Quantity, error) {
	if unitID == p.BaseUnitID {
		return qty, nil
	}

	if p.AltUnitID != nil && unitID == *p.AltUnitID {
		if p.ConversionFactor <= 0 {
			return 0, apperror.NewInvalidConversionFactor(p.ConversionFactor)
		}
		return qty.MulInt(p.ConversionFactor), nil
	}

	return 0, apperror.NewInvalidUnit(p.ID.String(), unitID.String())
}

// IsLowStock reports whether the balance is at or under the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.StockOnHand <= p.ReorderThreshold
}
