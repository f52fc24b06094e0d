package supplier

import (
	"context"
	"fmt"

	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
	"stockroom/pkg/numerator"
)

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo Repository
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(func(ctx context.Context, s *Supplier) error {
		if s.Code == "" {
			code, err := svc.NextCode(ctx, "SU")
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			s.Code = code
		}
		return nil
	})

	return svc
}
