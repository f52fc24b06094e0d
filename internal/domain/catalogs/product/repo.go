package product

import (
	"context"

	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves the product with a row lock (SELECT ... FOR UPDATE).
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// AdjustStock applies a signed delta to stock_on_hand and returns the new
	// balance. Returns NEGATIVE_STOCK if the result would be negative.
	// Must be called inside a transaction, after GetForUpdate.
	AdjustStock(ctx context.Context, id id.ID, delta types.Quantity) (types.Quantity, error)

	// ListLowStock retrieves products at or under their reorder threshold.
	ListLowStock(ctx context.Context) ([]*Product, error)
}
