package reception

import (
	"context"
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
)

// Repository defines operations for reception documents and their lines.
type Repository interface {
	Create(ctx context.Context, doc *Reception) error
	GetByID(ctx context.Context, docID id.ID) (*Reception, error)
	GetByNumber(ctx context.Context, number string) (*Reception, error)
	Update(ctx context.Context, doc *Reception) error

	// GetForUpdate retrieves the document header with a row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*Reception, error)

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	GetLine(ctx context.Context, lineID id.ID) (Line, error)
	GetLineForUpdate(ctx context.Context, lineID id.ID) (Line, error)
	InsertLine(ctx context.Context, line Line) error
	UpdateLine(ctx context.Context, line Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Reception], error)
}

// ListFilter for filtering receptions.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	Active     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}
