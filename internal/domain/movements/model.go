// Package movements provides direct stock movements (entries and exits)
// outside of sale/reception documents.
package movements

import (
	"context"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/ledger"
)

// Kind classifies the business reason of a movement.
// Which kinds are valid depends on the movement direction.
type Kind string

const (
	// Entry kinds (inward)
	KindPurchase         Kind = "purchase"
	KindCustomerReturn   Kind = "customer_return"
	KindCorrection       Kind = "correction"
	KindDonationReceived Kind = "donation_received"

	// Exit kinds (outward)
	KindDonation    Kind = "donation"
	KindLoss        Kind = "loss"
	KindInternalUse Kind = "internal_use"

	// Valid for both directions
	KindOther Kind = "other"
)

var entryKinds = map[Kind]bool{
	KindPurchase:         true,
	KindCustomerReturn:   true,
	KindCorrection:       true,
	KindDonationReceived: true,
	KindOther:            true,
}

var exitKinds = map[Kind]bool{
	KindDonation:    true,
	KindLoss:        true,
	KindInternalUse: true,
	KindOther:       true,
}

// ValidKind reports whether kind is allowed for the given direction.
func ValidKind(direction ledger.Direction, kind Kind) bool {
	switch direction {
	case ledger.Inward:
		return entryKinds[kind]
	case ledger.Outward:
		return exitKinds[kind]
	}
	return false
}

// Movement is a single-product stock entry or exit.
type Movement struct {
	entity.Document

	Direction ledger.Direction `db:"direction" json:"direction"`
	Kind      Kind             `db:"kind" json:"kind"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitID    id.ID          `db:"unit_id" json:"unitId"`

	// SupplierID is the counterparty for entries (required for purchases)
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// CustomerID is the counterparty for exits and customer returns
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`
}

// NewMovement creates a new active Movement.
func NewMovement(direction ledger.Direction, kind Kind, productID, unitID id.ID, qty types.Quantity) *Movement {
	return &Movement{
		Document:  entity.NewDocument(),
		Direction: direction,
		Kind:      kind,
		ProductID: productID,
		UnitID:    unitID,
		Quantity:  qty,
	}
}

// Validate implements entity.Validatable interface.
func (m *Movement) Validate(ctx context.Context) error {
	if err := m.Document.Validate(ctx); err != nil {
		return err
	}

	if !m.Direction.IsValid() {
		return apperror.NewValidation("unknown stock direction").
			WithDetail("direction", string(m.Direction))
	}

	if !ValidKind(m.Direction, m.Kind) {
		return apperror.NewValidation("kind is not valid for this direction").
			WithDetail("direction", string(m.Direction)).
			WithDetail("kind", string(m.Kind))
	}

	if id.IsNil(m.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if id.IsNil(m.UnitID) {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unitId")
	}

	if !m.Quantity.IsPositive() {
		return apperror.NewInvalidQuantity(m.Quantity.String())
	}

	switch m.Direction {
	case ledger.Inward:
		if m.Kind == KindPurchase && m.SupplierID == nil {
			return apperror.NewMissingCounterparty(string(m.Kind))
		}
		if m.CustomerID != nil && m.Kind != KindCustomerReturn {
			return apperror.NewValidation("entries carry a customer only for customer returns").
				WithDetail("kind", string(m.Kind))
		}
	case ledger.Outward:
		if m.SupplierID != nil {
			return apperror.NewValidation("exits cannot reference a supplier").
				WithDetail("field", "supplierId")
		}
		// A customer-bound exit of kind "other" is a disguised sale.
		if m.CustomerID != nil && m.Kind == KindOther {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				"customer-bound exits must go through a sale document",
			).WithDetail("kind", string(m.Kind))
		}
	}

	return nil
}

// Contribution returns the stock effect of this movement.
func (m *Movement) Contribution() ledger.Contribution {
	return ledger.Contribution{
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitID:    m.UnitID,
		Direction: m.Direction,
	}
}
