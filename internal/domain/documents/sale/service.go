package sale

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
	entityName     = "sale"
	lineEntityName = "sale line"
)

// Service provides business operations for sale documents.
//
// Every line operation is one transaction: the stock effect, the line row,
// and the recomputed header commit or roll back together.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	txManager tx.Manager
	numerator numerator.Generator
	trail     audit.Trail
}

// NewService creates a new sale service. trail may be nil.
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

// Create persists a new sale. Initial lines, if any, are applied to stock
// within the same transaction; on any line failure nothing is created.
func (s *Service) Create(ctx context.Context, doc *Sale) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.numerator.Next(ctx, "SAL", doc.Date)
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
			return fmt.Errorf("create sale: %w", err)
		}

		for i := range lines {
			line := &lines[i]
			if id.IsNil(line.LineID) {
				line.LineID = id.New()
			}
			line.SaleID = doc.ID
			line.LineNo = i + 1
			line.Active = true

			if _, err := s.ledger.Apply(ctx, line.Contribution()); err != nil {
				return err
			}
			if err := s.repo.InsertLine(ctx, *line); err != nil {
				return fmt.Errorf("insert sale line: %w", err)
			}
		}

		doc.Lines = lines
		doc.RecalculateTotals(lines)
		doc.Touch()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update sale totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logTrail(ctx, doc.ID, audit.ActionCreate, map[string]any{
		"number": doc.Number,
		"lines":  len(doc.Lines),
		"total":  doc.Total.String(),
	})

	logger.Info(ctx, "sale created", "sale_id", doc.ID, "number", doc.Number)

	return nil
}

// AddLine appends a line to an active sale, applies its outward stock
// effect, and recomputes the total and balance.
func (s *Service) AddLine(ctx context.Context, saleID id.ID, line *Line) error {
	if err := line.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(entityName); err != nil {
			return err
		}

		existing, err := s.repo.GetLines(ctx, saleID)
		if err != nil {
			return fmt.Errorf("load sale lines: %w", err)
		}

		if id.IsNil(line.LineID) {
			line.LineID = id.New()
		}
		line.SaleID = saleID
		line.LineNo = len(existing) + 1
		line.Active = true

		if _, err := s.ledger.Apply(ctx, line.Contribution()); err != nil {
			return err
		}
		if err := s.repo.InsertLine(ctx, *line); err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}

		return s.refreshTotals(ctx, doc)
	})
	if err != nil {
		return err
	}

	s.logTrail(ctx, saleID, audit.ActionUpdate, map[string]any{
		"line_id":  line.LineID,
		"quantity": line.Quantity.String(),
	})

	return nil
}

// UpdateLine edits an active line: the old stock effect is exactly reversed
// and the new one applied in the same transaction, validated against the
// post-reversal balance.
func (s *Service) UpdateLine(ctx context.Context, saleID id.ID, line *Line) error {
	if err := line.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, saleID)
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
		if old.SaleID != saleID {
			return apperror.NewNotFound(lineEntityName, line.LineID.String())
		}
		if !old.Active {
			return apperror.NewRecordInactive(lineEntityName, line.LineID.String())
		}

		if err := s.ledger.Replace(ctx, old.Contribution(), line.Contribution()); err != nil {
			return err
		}

		line.SaleID = old.SaleID
		line.LineNo = old.LineNo
		line.Active = true
		if err := s.repo.UpdateLine(ctx, *line); err != nil {
			return fmt.Errorf("update sale line: %w", err)
		}

		return s.refreshTotals(ctx, doc)
	})
	if err != nil {
		return err
	}

	s.logTrail(ctx, saleID, audit.ActionUpdate, map[string]any{
		"line_id":  line.LineID,
		"quantity": line.Quantity.String(),
	})

	return nil
}

// RemoveLine deactivates a line and reverses its stock effect.
// Idempotent: removing an already inactive line is a no-op.
func (s *Service) RemoveLine(ctx context.Context, saleID, lineID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, saleID)
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
		if old.SaleID != saleID {
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
			return fmt.Errorf("deactivate sale line: %w", err)
		}

		return s.refreshTotals(ctx, doc)
	})
}

// SetAmountPaid records a payment amount and refreshes the balance.
func (s *Service) SetAmountPaid(ctx context.Context, saleID id.ID, amount types.Money) error {
	if amount.IsNegative() {
		return apperror.NewValidation("amount paid cannot be negative").
			WithDetail("field", "amountPaid")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, saleID)
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
			return fmt.Errorf("update sale payment: %w", err)
		}
		return nil
	})
}

// Cancel deactivates the sale: every active line is reversed, lines and
// document are deactivated, and all money fields are zeroed. One
// transaction, idempotent, terminal.
func (s *Service) Cancel(ctx context.Context, saleID id.ID) error {
	var cancelled bool

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.getForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if !doc.Active {
			return nil
		}

		lines, err := s.repo.GetLines(ctx, saleID)
		if err != nil {
			return fmt.Errorf("load sale lines: %w", err)
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
				return fmt.Errorf("deactivate sale line: %w", err)
			}
		}

		doc.ZeroTotals()
		doc.Deactivate()
		audit.StampUpdated(ctx, &doc.UpdatedBy)
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("deactivate sale: %w", err)
		}
		cancelled = true
		return nil
	})
	if err != nil {
		return err
	}

	if cancelled {
		s.logTrail(ctx, saleID, audit.ActionDeactivate, nil)
		logger.Info(ctx, "sale cancelled", "sale_id", saleID)
	}

	return nil
}

// GetByID retrieves a sale with its lines.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	doc, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, saleID.String())
		}
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("load sale lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves sales with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) getForUpdate(ctx context.Context, saleID id.ID) (*Sale, error) {
	doc, err := s.repo.GetForUpdate(ctx, saleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityName, saleID.String())
		}
		return nil, err
	}
	return doc, nil
}

// refreshTotals recomputes the header from the current lines and saves it.
// Runs inside the caller's transaction, after line writes.
func (s *Service) refreshTotals(ctx context.Context, doc *Sale) error {
	lines, err := s.repo.GetLines(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("load sale lines: %w", err)
	}

	doc.RecalculateTotals(lines)
	audit.StampUpdated(ctx, &doc.UpdatedBy)
	doc.Touch()
	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update sale totals: %w", err)
	}
	return nil
}

func (s *Service) logTrail(ctx context.Context, saleID id.ID, action audit.Action, changes map[string]any) {
	if s.trail == nil {
		return
	}
	if err := s.trail.LogChange(ctx, entityName, saleID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "sale_id", saleID, "error", err)
	}
}
