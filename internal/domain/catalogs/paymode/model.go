// Package paymode provides the payment mode catalog (cash, mobile money, ...).
package paymode

import (
	"context"

	"stockroom/internal/core/entity"
)

// PayMode represents a payment mode referenced by sales.
type PayMode struct {
	entity.Catalog

	Description *string `db:"description" json:"description,omitempty"`
}

// NewPayMode creates a new PayMode.
func NewPayMode(code, name string) *PayMode {
	return &PayMode{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (p *PayMode) Validate(ctx context.Context) error {
	return p.Catalog.Validate(ctx)
}
