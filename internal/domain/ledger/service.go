package ledger

import (
	"context"
	"fmt"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/pkg/logger"
)

// ProductStore is the slice of the product repository the ledger needs:
// a locked point read and a guarded balance adjustment.
type ProductStore interface {
	GetForUpdate(ctx context.Context, id id.ID) (*product.Product, error)
	AdjustStock(ctx context.Context, id id.ID, delta types.Quantity) (types.Quantity, error)
}

// Service applies and reverses stock contributions.
// All methods must run inside the caller's transaction; the product row
// lock taken here serializes concurrent writers per product.
type Service struct {
	products ProductStore
}

// NewService creates a new ledger service.
func NewService(products ProductStore) *Service {
	return &Service{
		products: products,
	}
}

// Apply converts the contribution to base units and adjusts the product
// balance. For outward contributions feasibility is checked against the
// locked balance first, so INSUFFICIENT_STOCK surfaces before any mutation.
//
// Returns the applied quantity in base units.
func (s *Service) Apply(ctx context.Context, c Contribution) (types.Quantity, error) {
	if !c.Quantity.IsPositive() {
		return 0, apperror.NewInvalidQuantity(c.Quantity.String())
	}
	if !c.Direction.IsValid() {
		return 0, apperror.NewValidation("unknown stock direction").
			WithDetail("direction", string(c.Direction))
	}

	p, err := s.products.GetForUpdate(ctx, c.ProductID)
	if err != nil {
		return 0, fmt.Errorf("lock product %s: %w", c.ProductID, err)
	}

	base, err := p.ConvertToBase(c.Quantity, c.UnitID)
	if err != nil {
		return 0, err
	}

	if c.Direction == Outward && p.StockOnHand < base {
		return 0, apperror.NewInsufficientStock(
			c.ProductID.String(),
			base.String(),
			p.StockOnHand.String(),
		)
	}

	newBalance, err := s.products.AdjustStock(ctx, c.ProductID, base.MulInt(c.Sign()))
	if err != nil {
		return 0, fmt.Errorf("adjust stock %s: %w", c.ProductID, err)
	}

	logger.Debug(ctx, "stock adjusted",
		"product_id", c.ProductID,
		"direction", string(c.Direction),
		"base_qty", base.String(),
		"balance", newBalance.String(),
	)

	return base, nil
}

// Reverse undoes a previously applied contribution by applying its inverse.
// Reversing an outward contribution always succeeds; reversing an inward
// contribution fails with INSUFFICIENT_STOCK when later exits already
// consumed the stock it brought in.
func (s *Service) Reverse(ctx context.Context, c Contribution) (types.Quantity, error) {
	return s.Apply(ctx, c.Inverse())
}

// Replace atomically swaps an old contribution for a new one:
// reverse the old, then apply the new. The new contribution is validated
// against the post-reversal balance, so an edit that merely shrinks an
// outward quantity never fails feasibility.
func (s *Service) Replace(ctx context.Context, old, new Contribution) error {
	if _, err := s.Reverse(ctx, old); err != nil {
		return fmt.Errorf("reverse old contribution: %w", err)
	}
	if _, err := s.Apply(ctx, new); err != nil {
		return fmt.Errorf("apply new contribution: %w", err)
	}
	return nil
}
