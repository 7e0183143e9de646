// Package persistence provides transaction plumbing shared by the SQL
// repository implementations. Transactions travel through the context so
// repositories stay oblivious to unit-of-work boundaries.
package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgTxKey struct{}

// PgTxInfo holds a pgx transaction and whether the current unit of work
// owns it. Nested Begin calls join the outer transaction unowned.
type PgTxInfo struct {
	Tx    pgx.Tx
	Owned bool
}

// WithPgTx stores pgx transaction info in the context.
func WithPgTx(ctx context.Context, tx pgx.Tx, owned bool) context.Context {
	return context.WithValue(ctx, pgTxKey{}, PgTxInfo{Tx: tx, Owned: owned})
}

// PgTxFromContext extracts pgx transaction info from the context.
func PgTxFromContext(ctx context.Context) (PgTxInfo, bool) {
	info, ok := ctx.Value(pgTxKey{}).(PgTxInfo)
	if !ok || info.Tx == nil {
		return PgTxInfo{}, false
	}
	return info, true
}

// PgExecutor abstracts pgxpool.Pool and pgx.Tx for query execution.
type PgExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Executor returns the context transaction when present, otherwise the
// pool.
func Executor(ctx context.Context, pool *pgxpool.Pool) PgExecutor {
	if info, ok := PgTxFromContext(ctx); ok {
		return info.Tx
	}
	return pool
}
