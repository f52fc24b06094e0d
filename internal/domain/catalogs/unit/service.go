package unit

import (
	"context"
	"fmt"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
	"stockroom/pkg/numerator"
)

// Service provides business logic for the Unit catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Unit]
	repo Repository
}

// NewService creates a new Unit service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Unit]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "unit",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, unit *Unit) error {
	// Generate code if not provided
	if unit.Code == "" {
		code, err := s.NextCode(ctx, "UN")
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		unit.Code = code
	}

	// Check symbol uniqueness
	if unit.Symbol != "" {
		if exists, _ := s.checkSymbolExists(ctx, unit.Symbol, unit.ID); exists {
			return apperror.NewConflict("unit with this symbol already exists").
				WithDetail("symbol", unit.Symbol)
		}
	}

	return nil
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, unit *Unit) error {
	if unit.Symbol != "" {
		if exists, _ := s.checkSymbolExists(ctx, unit.Symbol, unit.ID); exists {
			return apperror.NewConflict("unit with this symbol already exists").
				WithDetail("symbol", unit.Symbol)
		}
	}

	return nil
}

// --- Entity-specific methods ---

// FindBySymbol retrieves unit by symbol.
func (s *Service) FindBySymbol(ctx context.Context, symbol string) (*Unit, error) {
	return s.repo.FindBySymbol(ctx, symbol)
}

func (s *Service) checkSymbolExists(ctx context.Context, symbol string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindBySymbol(ctx, symbol)
	if err != nil {
		return false, nil
	}
	return existing.ID != excludeID, nil
}
