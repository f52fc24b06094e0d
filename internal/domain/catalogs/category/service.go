package category

import (
	"context"
	"fmt"

	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
	"stockroom/pkg/numerator"
)

// Service provides business logic for the Category catalog.
type Service struct {
	*domain.CatalogService[*Category]
	repo Repository
}

// NewService creates a new Category service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "category",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(func(ctx context.Context, c *Category) error {
		if c.Code == "" {
			code, err := svc.NextCode(ctx, "CAT")
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			c.Code = code
		}
		return nil
	})

	return svc
}
