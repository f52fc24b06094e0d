package reception

import (
	"context"
	"fmt"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/internal/domain/audit"
	"stockroom/internal/domain/ledger"
	"stockroom/pkg/logger"
	"stockroom/pkg/numerator"
)

const (
	entityName     = "reception"
	lineEntityName = "reception line"
)

// Service provides business operations for reception documents.
// The shape mirrors the sale service with the direction flipped: reception
// lines bring stock in, so removing or cancelling them can fail with
// INSUFFICIENT_STOCK when the received goods were already sold.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	txManager tx.Manager
	numerator numerator.Generator
	trail     audit.Trail
}

// NewService creates a new reception service. trail may be nil.
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

// Create persists a new reception. Initial lines, if any, are applied to
// stock within the same transaction.
func (s *Service) Create(ctx context.Context, doc *Reception) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.numerator.Next(ctx, "REC", doc.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	audit.StampCreated(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lines := doc.Lines
		doc.Lines = nil
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create reception: %w", err)
		}

		for i := range lines {
			line := &lines[i]
			if id.IsNil(line.LineID) {
				line.LineID = id.New()
			}
			line.ReceptionID = doc.ID
			line.LineNo = i + 1
			line.Active = true

			if _, err := s.ledger.Apply(ctx, line.Contribution()); err != nil {
				return err
			}
			if err := s.repo.InsertLine(ctx, *line); err != nil {
				return fmt.Errorf("insert reception line: %w", err)
			}
		}

		doc.Lines = lines
		doc.RecalculateTotals(lines)
		doc.Touch()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update reception totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logTrail(ctx, doc.ID, audit.ActionCreate, map[string]any{
		"number":      doc.Number,
		"supplier_id": doc.SupplierID,
		"lines":       len(doc.Lines),
		"total":       doc.Total.String(),
	})

	logger.Info(ctx, "reception created", "reception_id", doc.ID, "number", doc.Number)

	return nil
}

// AddLine appends a line to an active reception, applies its inward stock
// effect, and recomputes the total and balance.
func (s *Service) AddLine(ctx context.Context, receptionID id.ID, line *Line) error {
	if err := line.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, receptionID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(entityName); err != nil {
			return err
		}

		existing, err := s.repo.GetLines(ctx, receptionID)
		if err != nil {
			return fmt.Errorf("load reception lines: %w", err)
		}

		if id.IsNil(line.LineID) {
			line.LineID = id.New()
		}
		line.ReceptionID = receptionID
		line.LineNo = len(existing) + 1
		line.Active = true

		if _, err := s.ledger.Apply(ctx, line.Contribution()); err != nil {
			return err
		}
		if err := s.repo.InsertLine(ctx, *line); err != nil {
			return fmt.Errorf("insert reception line: %w", err)
		}

		return s.refreshTotals(ctx, doc)
	})
}

// UpdateLine edits an active line: reverse the old inward effect, apply the
// new one, both in one transaction. Shrinking a received quantity below what
// was already consumed fails with INSUFFICIENT_STOCK.
func (s *Service) UpdateLine(ctx context.Context, receptionID id.ID, line *Line) error {
	if err := line.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, receptionID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(entityName); err != nil {
			return err
		}

		old, err := s.repo.GetLineForUpdate(ctx, line.LineID)
		if err != nil {
			return err
		}
		if old.ReceptionID != receptionID {
			return apperror.NewNotFound(lineEntityName, line.LineID.String())
		}
		if !old.Active {
			return apperror.NewRecordInactive(lineEntityName, line.LineID.String())
		}

		if err := s.ledger.Replace(ctx, old.Contribution(), line.Contribution()); err != nil {
			return err
		}

		line.ReceptionID = old.ReceptionID
		line.LineNo = old.LineNo
		line.Active = true
		if err := s.repo.UpdateLine(ctx, *line); err != nil {
			return fmt.Errorf("update reception line: %w", err)
		}

		return s.refreshTotals(ctx, doc)
	})
}

// RemoveLine deactivates a line and reverses its inward stock effect.
// Idempotent: removing an already inactive line is a no-op.
func (s *Service) RemoveLine(ctx context.Context, receptionID, lineID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, receptionID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(entityName); err != nil {
			return err
		}

		old, err := s.repo.GetLineForUpdate(ctx, lineID)
		if err != nil {
			return err
		}
		if old.ReceptionID != receptionID {
			return apperror.NewNotFound(lineEntityName, lineID.String())
		}
		if !old.Active {
			return nil
		}

		if _, err := s.ledger.Reverse(ctx, old.Contribution()); err != nil {
			return err
		}

		old.Active = false
		if err := s.repo.UpdateLine(ctx, old); err != nil {
			return fmt.Errorf("deactivate reception line: %w", err)
		}

		return s.refreshTotals(ctx, doc)
	})
}

// SetAmountPaid records a payment amount and refreshes the balance.
func (s *Service) SetAmountPaid(ctx context.Context, receptionID id.ID, amount types.Money) error {
	if amount.IsNegative() {
		return apperror.NewValidation("amount paid cannot be negative").
			WithDetail("field", "amountPaid")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, receptionID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(entityName); err != nil {
			return err
		}

		doc.AmountPaid = amount
		doc.RecalculateBalance()
		audit.StampUpdated(ctx, &doc.UpdatedBy)
		doc.Touch()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update reception payment: %w", err)
		}
		return nil
	})
}

// Cancel deactivates the reception: every active line is reversed, lines
// and document are deactivated, money fields zeroed. One transaction,
// idempotent, terminal. Fails with INSUFFICIENT_STOCK if received goods
// were already consumed.
func (s *Service) Cancel(ctx context.Context, receptionID id.ID) error {
	var cancelled bool

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, receptionID)
		if err != nil {
			return err
		}
		if !doc.Active {
			return nil
		}

		lines, err := s.repo.GetLines(ctx, receptionID)
		if err != nil {
			return fmt.Errorf("load reception lines: %w", err)
		}

		for _, line := range lines {
			if !line.Active {
				continue
			}
			if _, err := s.ledger.Reverse(ctx, line.Contribution()); err != nil {
				return err
			}
			line.Active = false
			if err := s.repo.UpdateLine(ctx, line); err != nil {
				return fmt.Errorf("deactivate reception line: %w", err)
			}
		}

		doc.ZeroTotals()
		doc.Deactivate()
		audit.StampUpdated(ctx, &doc.UpdatedBy)
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("deactivate reception: %w", err)
		}
		cancelled = true
		return nil
	})
	if err != nil {
		return err
	}

	if cancelled {
		s.logTrail(ctx, receptionID, audit.ActionDeactivate, nil)
		logger.Info(ctx, "reception cancelled", "reception_id", receptionID)
	}

	return nil
}

// GetByID retrieves a reception with its lines.
func (s *Service) GetByID(ctx context.Context, receptionID id.ID) (*Reception, error) {
	doc, err := s.repo.GetByID(ctx, receptionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, receptionID.String())
		}
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, receptionID)
	if err != nil {
		return nil, fmt.Errorf("load reception lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves receptions with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Reception], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) getForUpdate(ctx context.Context, receptionID id.ID) (*Reception, error) {
	doc, err := s.repo.GetForUpdate(ctx, receptionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, receptionID.String())
		}
		return nil, err
	}
	return doc, nil
}

func (s *Service) refreshTotals(ctx context.Context, doc *Reception) error {
	lines, err := s.repo.GetLines(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("load reception lines: %w", err)
	}

	doc.RecalculateTotals(lines)
	audit.StampUpdated(ctx, &doc.UpdatedBy)
	doc.Touch()
	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update reception totals: %w", err)
	}
	return nil
}

func (s *Service) logTrail(ctx context.Context, receptionID id.ID, action audit.Action, changes map[string]any) {
	if s.trail == nil {
		return
	}
	if err := s.trail.LogChange(ctx, entityName, receptionID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "reception_id", receptionID, "error", err)
	}
}
