package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain"
	"stockroom/internal/domain/documents/reception"
	"stockroom/internal/infrastructure/storage/postgres"
)

const (
	receptionTable     = "doc_receptions"
	receptionLineTable = "doc_reception_lines"
)

// ReceptionRepo implements reception.Repository.
type ReceptionRepo struct {
	*BaseDocumentRepo[*reception.Reception]

	lineCols []string
}

// NewReceptionRepo creates a new reception repository.
func NewReceptionRepo(txm *postgres.TxManager) *ReceptionRepo {
	return &ReceptionRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			receptionTable,
			postgres.ExtractDBColumns[reception.Reception](),
			func() *reception.Reception { return &reception.Reception{} },
		),
		lineCols: postgres.ExtractDBColumns[reception.Line](),
	}
}

// GetLines returns all lines of a reception ordered by line number.
func (r *ReceptionRepo) GetLines(ctx context.Context, docID id.ID) ([]reception.Line, error) {
	q := r.Builder().
		Select(r.lineCols...).
		From(receptionLineTable).
		Where(squirrel.Eq{"reception_id": docID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]reception.Line, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get reception lines: %w", err)
	}

	return lines, nil
}

// GetLine retrieves a single line by its ID.
func (r *ReceptionRepo) GetLine(ctx context.Context, lineID id.ID) (reception.Line, error) {
	return r.getLine(ctx, lineID, false)
}

// GetLineForUpdate retrieves a line with a row lock.
// Must be called inside a transaction.
func (r *ReceptionRepo) GetLineForUpdate(ctx context.Context, lineID id.ID) (reception.Line, error) {
	return r.getLine(ctx, lineID, true)
}

func (r *ReceptionRepo) getLine(ctx context.Context, lineID id.ID, forUpdate bool) (reception.Line, error) {
	var line reception.Line

	q := r.Builder().
		Select(r.lineCols...).
		From(receptionLineTable).
		Where(squirrel.Eq{"line_id": lineID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return line, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), &line, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return line, apperror.NewNotFound("reception line", lineID.String())
		}
		return line, fmt.Errorf("get reception line: %w", postgres.MapError(err, receptionLineTable, lineID.String()))
	}

	return line, nil
}

// InsertLine inserts a new reception line.
func (r *ReceptionRepo) InsertLine(ctx context.Context, line reception.Line) error {
	data := postgres.StructToMap(line)

	q := r.Builder().
		Insert(receptionLineTable).
		SetMap(r.lineData(data))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert reception line: %w", postgres.MapError(err, receptionLineTable, line.LineID))
	}

	return nil
}

// UpdateLine updates an existing reception line by its ID.
// Callers lock the line with GetLineForUpdate first.
func (r *ReceptionRepo) UpdateLine(ctx context.Context, line reception.Line) error {
	data := r.lineData(postgres.StructToMap(line))
	delete(data, "line_id")

	q := r.Builder().
		Update(receptionLineTable).
		SetMap(data).
		Where(squirrel.Eq{"line_id": line.LineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update reception line: %w", postgres.MapError(err, receptionLineTable, line.LineID))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("reception line", line.LineID.String())
	}

	return nil
}

func (r *ReceptionRepo) lineData(data map[string]any) map[string]any {
	filtered := make(map[string]any, len(r.lineCols))
	for _, col := range r.lineCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	return filtered
}

// List retrieves receptions applying the reception-specific filter.
func (r *ReceptionRepo) List(ctx context.Context, f reception.ListFilter) (domain.ListResult[*reception.Reception], error) {
	return r.ListWith(ctx, f.ListFilter, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if f.SupplierID != nil {
			q = q.Where(squirrel.Eq{"supplier_id": *f.SupplierID})
		}
		if f.Active != nil {
			q = q.Where(squirrel.Eq{"active": *f.Active})
		}
		if f.DateFrom != nil {
			q = q.Where(squirrel.GtOrEq{"date": *f.DateFrom})
		}
		if f.DateTo != nil {
			q = q.Where(squirrel.LtOrEq{"date": *f.DateTo})
		}
		return q
	})
}
