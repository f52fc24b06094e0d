package customer

import (
	"context"
	"fmt"

	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
	"stockroom/pkg/numerator"
)

// Service provides business logic for the Customer catalog.
type Service struct {
	*domain.CatalogService[*Customer]
	repo Repository
}

// NewService creates a new Customer service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "customer",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(func(ctx context.Context, c *Customer) error {
		if c.Code == "" {
			code, err := svc.NextCode(ctx, "CU")
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			c.Code = code
		}
		return nil
	})

	return svc
}
