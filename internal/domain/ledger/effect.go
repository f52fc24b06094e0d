// Package ledger implements the shared stock apply/reverse protocol.
//
// Every stock-affecting record (movement, sale line, reception line)
// contributes exactly one signed effect to a product balance. Applying,
// reversing, and replacing contributions always happens under the product
// row lock inside the caller's transaction.
package ledger

import (
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// Direction indicates which way a contribution moves stock.
type Direction string

const (
	// Inward increases stock (receptions, entries).
	Inward Direction = "inward"
	// Outward decreases stock (sales, exits).
	Outward Direction = "outward"
)

// IsValid reports whether the direction is one of the two known values.
func (d Direction) IsValid() bool {
	return d == Inward || d == Outward
}

// Opposite returns the reversed direction.
func (d Direction) Opposite() Direction {
	if d == Inward {
		return Outward
	}
	return Inward
}

// Contribution is one record's stock effect, expressed in the record's
// input unit. The ledger converts it to base units at apply time.
type Contribution struct {
	ProductID id.ID
	Quantity  types.Quantity
	UnitID    id.ID
	Direction Direction
}

// Inverse returns the contribution with the opposite direction.
// Applying a contribution and then its inverse leaves stock unchanged.
func (c Contribution) Inverse() Contribution {
	c.Direction = c.Direction.Opposite()
	return c
}

// Sign returns +1 for inward and -1 for outward.
func (c Contribution) Sign() int64 {
	if c.Direction == Inward {
		return 1
	}
	return -1
}
