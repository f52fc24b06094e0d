// Package reception provides the Reception document: inward stock lines
// from a supplier plus settlement (amount paid, two-sided balance).
package reception

import (
	"context"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/ledger"
)

// Reception represents a goods reception from a supplier.
//
// Total is derived from active lines only. BalanceSupplier is what the
// store still owes the supplier, BalanceStore is what the supplier owes
// back (overpayment). At most one of the two is non-zero.
type Reception struct {
	entity.Document

	// SupplierID is the goods provider (required)
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// Totals (derived, never written directly)
	Total           types.Money `db:"total" json:"total"`
	AmountPaid      types.Money `db:"amount_paid" json:"amountPaid"`
	BalanceSupplier types.Money `db:"balance_supplier" json:"balanceSupplier"`
	BalanceStore    types.Money `db:"balance_store" json:"balanceStore"`

	// Table part: received goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one received product.
// UnitPrice is the purchase price per input unit and is authoritative for
// the subtotal.
type Line struct {
	LineID      id.ID `db:"line_id" json:"lineId"`
	ReceptionID id.ID `db:"reception_id" json:"receptionId"`
	LineNo      int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitID    id.ID          `db:"unit_id" json:"unitId"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`

	Active bool `db:"active" json:"active"`
}

// NewReception creates a new active Reception without lines.
func NewReception(supplierID id.ID) *Reception {
	return &Reception{
		Document:        entity.NewDocument(),
		SupplierID:      supplierID,
		Total:           types.Zero(),
		AmountPaid:      types.Zero(),
		BalanceSupplier: types.Zero(),
		BalanceStore:    types.Zero(),
		Lines:           make([]Line, 0),
	}
}

// NewLine creates a new active reception line.
func NewLine(productID, unitID id.ID, qty types.Quantity, unitPrice types.Money) Line {
	return Line{
		LineID:    id.New(),
		ProductID: productID,
		UnitID:    unitID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Active:    true,
	}
}

// Subtotal returns quantity times unit price.
func (l Line) Subtotal() types.Money {
	return l.UnitPrice.Mul(l.Quantity.Decimal())
}

// Contribution returns the inward stock effect of this line.
func (l Line) Contribution() ledger.Contribution {
	return ledger.Contribution{
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UnitID:    l.UnitID,
		Direction: ledger.Inward,
	}
}

// Validate checks line invariants.
func (l Line) Validate(ctx context.Context) error {
	if id.IsNil(l.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if id.IsNil(l.UnitID) {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unitId")
	}
	if !l.Quantity.IsPositive() {
		return apperror.NewInvalidQuantity(l.Quantity.String())
	}
	if l.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	return nil
}

// Validate implements entity.Validatable.
func (r *Reception) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.SupplierID) {
		return apperror.NewMissingCounterparty("reception")
	}

	if r.AmountPaid.IsNegative() {
		return apperror.NewValidation("amount paid cannot be negative").
			WithDetail("field", "amountPaid")
	}

	for i, line := range r.Lines {
		if err := line.Validate(ctx); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("lineNo", i+1)
			}
			return err
		}
	}

	return nil
}

// RecalculateTotals derives Total from the active lines and refreshes
// the balance.
func (r *Reception) RecalculateTotals(lines []Line) {
	total := types.Zero()
	for _, line := range lines {
		if !line.Active {
			continue
		}
		total = total.Add(line.Subtotal())
	}
	r.Total = total
	r.RecalculateBalance()
}

// RecalculateBalance refreshes the two-sided balance from Total and
// AmountPaid. Exactly one side can be non-zero.
func (r *Reception) RecalculateBalance() {
	if r.AmountPaid.GreaterThanOrEqual(r.Total) {
		r.BalanceSupplier = types.Zero()
		r.BalanceStore = r.AmountPaid.Sub(r.Total)
	} else {
		r.BalanceSupplier = r.Total.Sub(r.AmountPaid)
		r.BalanceStore = types.Zero()
	}
}

// ZeroTotals clears all money fields (used on cancellation).
func (r *Reception) ZeroTotals() {
	r.Total = types.Zero()
	r.AmountPaid = types.Zero()
	r.BalanceSupplier = types.Zero()
	r.BalanceStore = types.Zero()
}
