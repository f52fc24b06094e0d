package product

import (
	"context"
	"fmt"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
	"stockroom/pkg/numerator"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.guardStockField)

	return svc
}

// prepareForCreate handles code generation.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		code, err := s.NextCode(ctx, "PR")
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	// New products start with zero stock; receptions and entries fill it.
	if !p.StockOnHand.IsZero() {
		return apperror.NewValidation("stock cannot be set directly; use stock operations").
			WithDetail("field", "stockOnHand")
	}

	return nil
}

// guardStockField rejects direct writes to stock_on_hand.
// The balance changes only through the ledger under a row lock.
func (s *Service) guardStockField(ctx context.Context, p *Product) error {
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.StockOnHand != existing.StockOnHand {
		return apperror.NewValidation("stock cannot be modified directly; use stock operations").
			WithDetail("field", "stockOnHand")
	}
	return nil
}

// ListLowStock retrieves products at or under their reorder threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]*Product, error) {
	return s.repo.ListLowStock(ctx)
}
