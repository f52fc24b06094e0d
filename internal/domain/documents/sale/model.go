// Package sale provides the Sale document: outward stock lines plus
// settlement (amount paid, two-sided balance with the customer).
package sale

import (
	"context"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/ledger"
)

// Sale represents a sale document.
//
// Total is derived from active lines only. The balance is two-sided:
// BalanceCustomer is what the customer still owes, BalanceStore is what the
// store owes back (overpayment). At most one of the two is non-zero.
type Sale struct {
	entity.Document

	// CustomerID is the optional buyer (walk-in sales have none)
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	// PayModeID is the optional payment mode
	PayModeID *id.ID `db:"pay_mode_id" json:"payModeId,omitempty"`

	// Totals (derived, never written directly)
	Total           types.Money `db:"total" json:"total"`
	AmountPaid      types.Money `db:"amount_paid" json:"amountPaid"`
	BalanceCustomer types.Money `db:"balance_customer" json:"balanceCustomer"`
	BalanceStore    types.Money `db:"balance_store" json:"balanceStore"`

	// Table part: sold goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one sold product.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	SaleID id.ID `db:"sale_id" json:"saleId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitID    id.ID          `db:"unit_id" json:"unitId"`

	// UnitPrice is authoritative for the subtotal (price per input unit)
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Active indicates the line contributes to stock and the total.
	// Removal deactivates the line; deactivation is terminal.
	Active bool `db:"active" json:"active"`
}

// NewSale creates a new active Sale without lines.
func NewSale() *Sale {
	return &Sale{
		Document:        entity.NewDocument(),
		Total:           types.Zero(),
		AmountPaid:      types.Zero(),
		BalanceCustomer: types.Zero(),
		BalanceStore:    types.Zero(),
		Lines:           make([]Line, 0),
	}
}

// NewLine creates a new active sale line.
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

// Contribution returns the outward stock effect of this line.
func (l Line) Contribution() ledger.Contribution {
	return ledger.Contribution{
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UnitID:    l.UnitID,
		Direction: ledger.Outward,
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
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if s.AmountPaid.IsNegative() {
		return apperror.NewValidation("amount paid cannot be negative").
			WithDetail("field", "amountPaid")
	}

	for i, line := range s.Lines {
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
func (s *Sale) RecalculateTotals(lines []Line) {
	total := types.Zero()
	for _, line := range lines {
		if !line.Active {
			continue
		}
		total = total.Add(line.Subtotal())
	}
	s.Total = total
	s.RecalculateBalance()
}

// RecalculateBalance refreshes the two-sided balance from Total and
// AmountPaid. Exactly one side can be non-zero.
func (s *Sale) RecalculateBalance() {
	if s.AmountPaid.GreaterThanOrEqual(s.Total) {
		s.BalanceCustomer = types.Zero()
		s.BalanceStore = s.AmountPaid.Sub(s.Total)
	} else {
		s.BalanceCustomer = s.Total.Sub(s.AmountPaid)
		s.BalanceStore = types.Zero()
	}
}

// ZeroTotals clears all money fields (used on cancellation).
func (s *Sale) ZeroTotals() {
	s.Total = types.Zero()
	s.AmountPaid = types.Zero()
	s.BalanceCustomer = types.Zero()
	s.BalanceStore = types.Zero()
}
