package postgres

import (
	"context"
	"database/sql"
	"time"

	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// TxRunner runs callbacks inside a single database transaction.
type TxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db, timeout: defaultTxTimeout}
}

// RunInTx begins a transaction, places it in the context handed to fn, and
// commits when fn returns nil. Any error rolls the transaction back. A call
// made while a transaction is already bound to ctx joins it.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := tx.Active(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.Bind(ctx, sqlTx)); err != nil {
		return err
	}

	return sqlTx.Commit()
}
