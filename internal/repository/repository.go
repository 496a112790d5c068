package repository

import (
	"context"
	"database/sql"
)

// execer is satisfied by both *sql.DB and *sql.Tx so row helpers can be
// shared between single-row methods and transactional batch methods.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
