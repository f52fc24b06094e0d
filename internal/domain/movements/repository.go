package movements

import (
	"context"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
)

// Repository defines the interface for Movement persistence.
type Repository interface {
	// Create inserts a new movement
	Create(ctx context.Context, m *Movement) error

	// GetByID retrieves movement by ID
	GetByID(ctx context.Context, id id.ID) (*Movement, error)

	// GetForUpdate retrieves movement with a row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, id id.ID) (*Movement, error)

	// Update modifies an existing movement (with optimistic locking)
	Update(ctx context.Context, m *Movement) error

	// List retrieves movements with filtering and pagination
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Movement], error)
}
