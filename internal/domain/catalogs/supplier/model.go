// Package supplier provides the Supplier catalog.
package supplier

import (
	"context"

	"stockroom/internal/core/entity"
)

// Supplier represents a goods provider referenced by receptions and
// purchase entries.
type Supplier struct {
	entity.Catalog

	Phone   *string `db:"phone" json:"phone,omitempty"`
	Email   *string `db:"email" json:"email,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
}

// NewSupplier creates a new Supplier.
func NewSupplier(code, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	return s.Catalog.Validate(ctx)
}
