// Package numerator binds pkg/numerator to the PostgreSQL transaction manager.
package numerator

import (
	"context"

	"github.com/jackc/pgx/v5"

	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/pkg/numerator"
)

// TxQuerier adapts postgres.TxManager to numerator.Querier so that number
// allocation joins the caller's transaction when one is active.
type TxQuerier struct {
	txm *postgres.TxManager
}

// NewTxQuerier creates the adapter.
func NewTxQuerier(txm *postgres.TxManager) *TxQuerier {
	return &TxQuerier{txm: txm}
}

// QueryRow delegates to the context-resolved querier (tx or pool).
func (q *TxQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
}

// New creates a numerator service bound to the transaction manager.
func New(txm *postgres.TxManager) *numerator.Service {
	return numerator.New(NewTxQuerier(txm))
}
