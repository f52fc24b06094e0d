package paymode

import (
	"context"
	"fmt"

	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
	"stockroom/pkg/numerator"
)

// Service provides business logic for the PayMode catalog.
type Service struct {
	*domain.CatalogService[*PayMode]
	repo Repository
}

// NewService creates a new PayMode service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*PayMode]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "payment mode",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(func(ctx context.Context, p *PayMode) error {
		if p.Code == "" {
			code, err := svc.NextCode(ctx, "PM")
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			p.Code = code
		}
		return nil
	})

	return svc
}
