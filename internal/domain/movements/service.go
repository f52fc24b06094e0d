package movements

import (
	"context"
	"fmt"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
	"stockroom/internal/domain/audit"
	"stockroom/internal/domain/ledger"
	"stockroom/pkg/logger"
	"stockroom/pkg/numerator"
)

const entityName = "movement"

// Service provides business operations for stock movements.
// Every mutating operation runs in a single transaction: the stock
// adjustment and the movement row commit or roll back together.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	txManager tx.Manager
	numerator numerator.Generator
	trail     audit.Trail
}

// NewService creates a new movement service. trail may be nil.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	txManager tx.Manager,
	gen numerator.Generator,
	trail audit.Trail,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		txManager: txManager,
		numerator: gen,
		trail:     trail,
	}
}

// Create validates the movement, applies its stock effect, and persists it.
func (s *Service) Create(ctx context.Context, m *Movement) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	if m.Number == "" {
		number, err := s.numerator.Next(ctx, "MOV", m.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		m.Number = number
	}

	audit.StampCreated(ctx, &m.CreatedBy, &m.UpdatedBy)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.ledger.Apply(ctx, m.Contribution()); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, m); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logTrail(ctx, m.ID, audit.ActionCreate, map[string]any{
		"number":    m.Number,
		"direction": string(m.Direction),
		"kind":      string(m.Kind),
		"quantity":  m.Quantity.String(),
	})

	logger.Info(ctx, "movement created",
		"movement_id", m.ID,
		"number", m.Number,
		"direction", string(m.Direction),
	)

	return nil
}

// Update edits an active movement by exactly reversing its old stock effect
// and applying the new one in the same transaction. The new effect is
// validated against the post-reversal balance.
func (s *Service) Update(ctx context.Context, m *Movement) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetForUpdate(ctx, m.ID)
		if err != nil {
			return err
		}
		if !old.Active {
			return apperror.NewRecordInactive(entityName, m.ID.String())
		}

		// Direction is immutable; the locked row is authoritative, so a
		// tampered direction in the input can neither flip the stock effect
		// nor smuggle in a kind from the other direction.
		m.Direction = old.Direction
		if err := m.Validate(ctx); err != nil {
			return err
		}

		if err := s.ledger.Replace(ctx, old.Contribution(), m.Contribution()); err != nil {
			return err
		}

		// Immutable header fields carry over from the stored row.
		m.Number = old.Number
		m.Active = old.Active
		m.CreatedAt = old.CreatedAt
		m.CreatedBy = old.CreatedBy
		m.Version = old.Version
		audit.StampUpdated(ctx, &m.UpdatedBy)
		m.Touch()

		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("update movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logTrail(ctx, m.ID, audit.ActionUpdate, map[string]any{
		"quantity": m.Quantity.String(),
		"kind":     string(m.Kind),
	})

	return nil
}

// SoftDelete deactivates the movement and reverses its stock effect.
// Idempotent: deleting an already inactive movement is a no-op.
func (s *Service) SoftDelete(ctx context.Context, movementID id.ID) error {
	var deactivated bool

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if !m.Active {
			return nil
		}

		if _, err := s.ledger.Reverse(ctx, m.Contribution()); err != nil {
			return err
		}

		m.Deactivate()
		audit.StampUpdated(ctx, &m.UpdatedBy)
		if err := s.repo.Update(ctx, m); err != nil {
			return fmt.Errorf("deactivate movement: %w", err)
		}
		deactivated = true
		return nil
	})
	if err != nil {
		return err
	}

	if deactivated {
		s.logTrail(ctx, movementID, audit.ActionDeactivate, nil)
		logger.Info(ctx, "movement deactivated", "movement_id", movementID)
	}

	return nil
}

// GetByID retrieves a movement by ID.
func (s *Service) GetByID(ctx context.Context, movementID id.ID) (*Movement, error) {
	m, err := s.repo.GetByID(ctx, movementID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, movementID.String())
		}
		return nil, err
	}
	return m, nil
}

// List retrieves movements with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Movement], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) logTrail(ctx context.Context, movementID id.ID, action audit.Action, changes map[string]any) {
	if s.trail == nil {
		return
	}
	if err := s.trail.LogChange(ctx, entityName, movementID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "movement_id", movementID, "error", err)
	}
}
