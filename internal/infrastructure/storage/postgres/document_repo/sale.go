package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain"
	"stockroom/internal/domain/documents/sale"
	"stockroom/internal/infrastructure/storage/postgres"
)

const (
	saleTable     = "doc_sales"
	saleLineTable = "doc_sale_lines"
)

// SaleRepo implements sale.Repository.
// Headers live in doc_sales, lines in doc_sale_lines. Lines are never
// hard-deleted, removal flips the active flag.
type SaleRepo struct {
	*BaseDocumentRepo[*sale.Sale]

	lineCols []string
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			saleTable,
			postgres.ExtractDBColumns[sale.Sale](),
			func() *sale.Sale { return &sale.Sale{} },
		),
		lineCols: postgres.ExtractDBColumns[sale.Line](),
	}
}

// GetLines returns all lines of a sale ordered by line number.
func (r *SaleRepo) GetLines(ctx context.Context, docID id.ID) ([]sale.Line, error) {
	q := r.Builder().
		Select(r.lineCols...).
		From(saleLineTable).
		Where(squirrel.Eq{"sale_id": docID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]sale.Line, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}

	return lines, nil
}

// GetLine retrieves a single line by its ID.
func (r *SaleRepo) GetLine(ctx context.Context, lineID id.ID) (sale.Line, error) {
	return r.getLine(ctx, lineID, false)
}

// GetLineForUpdate retrieves a line with a row lock.
// Must be called inside a transaction.
func (r *SaleRepo) GetLineForUpdate(ctx context.Context, lineID id.ID) (sale.Line, error) {
	return r.getLine(ctx, lineID, true)
}

func (r *SaleRepo) getLine(ctx context.Context, lineID id.ID, forUpdate bool) (sale.Line, error) {
	var line sale.Line

	q := r.Builder().
		Select(r.lineCols...).
		From(saleLineTable).
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
			return line, apperror.NewNotFound("sale line", lineID.String())
		}
		return line, fmt.Errorf("get sale line: %w", postgres.MapError(err, saleLineTable, lineID.String()))
	}

	return line, nil
}

// InsertLine inserts a new sale line.
func (r *SaleRepo) InsertLine(ctx context.Context, line sale.Line) error {
	data := postgres.StructToMap(line)

	q := r.Builder().
		Insert(saleLineTable).
		SetMap(r.lineData(data))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale line: %w", postgres.MapError(err, saleLineTable, line.LineID))
	}

	return nil
}

// UpdateLine updates an existing sale line by its ID.
// Callers lock the line with GetLineForUpdate first.
func (r *SaleRepo) UpdateLine(ctx context.Context, line sale.Line) error {
	data := r.lineData(postgres.StructToMap(line))
	delete(data, "line_id")

	q := r.Builder().
		Update(saleLineTable).
		SetMap(data).
		Where(squirrel.Eq{"line_id": line.LineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale line: %w", postgres.MapError(err, saleLineTable, line.LineID))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale line", line.LineID.String())
	}

	return nil
}

func (r *SaleRepo) lineData(data map[string]any) map[string]any {
	filtered := make(map[string]any, len(r.lineCols))
	for _, col := range r.lineCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	return filtered
}

// List retrieves sales applying the sale-specific filter.
func (r *SaleRepo) List(ctx context.Context, f sale.ListFilter) (domain.ListResult[*sale.Sale], error) {
	return r.ListWith(ctx, f.ListFilter, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if f.CustomerID != nil {
			q = q.Where(squirrel.Eq{"customer_id": *f.CustomerID})
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
