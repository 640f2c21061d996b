package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database operations the stores need. It is
// implemented by both *sql.DB and *sql.Tx, so a store built on it works
// identically inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
