// Package tx lets stores join a transaction opened further up the call
// stack without taking it as a parameter.
package tx

import (
	"context"
	"database/sql"
)

type activeTxKey struct{}

// Executor is what stores need from either *sql.DB or *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Bind returns a context carrying t. A nil t leaves ctx untouched.
func Bind(ctx context.Context, t *sql.Tx) context.Context {
	if t == nil {
		return ctx
	}
	return context.WithValue(ctx, activeTxKey{}, t)
}

// Active returns the transaction bound to ctx, if any.
func Active(ctx context.Context) (*sql.Tx, bool) {
	t, ok := ctx.Value(activeTxKey{}).(*sql.Tx)
	return t, ok && t != nil
}

// ExecutorFrom prefers the bound transaction and falls back to db.
func ExecutorFrom(ctx context.Context, db *sql.DB) Executor {
	if t, ok := Active(ctx); ok {
		return t
	}
	return db
}
