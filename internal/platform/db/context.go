package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "db_tx"

// WithTx begins a transaction on the pool and returns a derived context that
// carries it. Repositories pick the transaction up through TxFromContext, so
// multi-statement writes (create user + assign role, upsert history + audit
// row) commit or roll back as a unit.
func WithTx(ctx context.Context, pool *pgxpool.Pool) (pgx.Tx, context.Context, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, ctx, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, context.WithValue(ctx, txKey, tx), nil
}

// TxFromContext returns the transaction carried by ctx, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// RunInTx executes fn inside a transaction. The transaction is committed when
// fn returns nil and rolled back otherwise.
func RunInTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, txCtx, err := WithTx(ctx, pool)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(txCtx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
