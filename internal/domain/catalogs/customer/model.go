// Package customer provides the Customer catalog.
package customer

import (
	"context"

	"stockroom/internal/core/entity"
)

// Customer represents a buyer referenced by sales.
type Customer struct {
	entity.Catalog

	Phone   *string `db:"phone" json:"phone,omitempty"`
	Email   *string `db:"email" json:"email,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
}

// NewCustomer creates a new Customer.
func NewCustomer(code, name string) *Customer {
	return &Customer{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	return c.Catalog.Validate(ctx)
}
