// Package unit provides the measurement unit catalog.
// Units are immutable reference data referenced by products and stock operations.
package unit

import (
	"context"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
)

// Unit represents a measurement unit (kg, piece, carton, ...).
type Unit struct {
	entity.Catalog

	// Symbol is the short symbol (e.g., "kg", "pcs")
	Symbol string `db:"symbol" json:"symbol"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewUnit creates a new Unit with required fields.
func NewUnit(code, name, symbol string) *Unit {
	return &Unit{
		Catalog: entity.NewCatalog(code, name),
		Symbol:  symbol,
	}
}

// Validate implements entity.Validatable interface.
func (u *Unit) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}

	// Symbol is required
	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	return nil
}
