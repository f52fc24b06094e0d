package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// AdjustStock applies a signed delta to stock_on_hand and returns the new
// balance. The WHERE clause guards the non-negative invariant at the
// database level so concurrent adjustments cannot interleave past it.
// Must be called inside a transaction, after GetForUpdate.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity) (types.Quantity, error) {
	const sql = `
		UPDATE cat_products
		SET stock_on_hand = stock_on_hand + $2
		WHERE id = $1 AND stock_on_hand + $2 >= 0
		RETURNING stock_on_hand
	`

	var balance int64
	err := r.querier(ctx).QueryRow(ctx, sql, productID, delta.Int64Scaled()).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		exists, exErr := r.Exists(ctx, productID)
		if exErr != nil {
			return 0, fmt.Errorf("adjust stock: %w", exErr)
		}
		if !exists {
			return 0, apperror.NewNotFound(productTable, productID.String())
		}
		return 0, apperror.NewNegativeStock(productID.String())
	}
	if err != nil {
		return 0, fmt.Errorf("adjust stock: %w", postgres.MapError(err, productTable, productID.String()))
	}

	return types.NewQuantityFromInt64Scaled(balance), nil
}

// ListLowStock retrieves products at or under their reorder threshold.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*product.Product, error) {
	q := r.baseSelect().
		Where("stock_on_hand <= reorder_threshold").
		Where("deletion_mark = false").
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	return items, nil
}
