// Package txutil runs database/sql transactions with consistent rollback handling.
package txutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Config groups parameters for WithTx.
type Config struct {
	Opts *sql.TxOptions
	Fn   func(*sql.Tx) error
}

// WithTx runs cfg.Fn within a transaction. The transaction is committed when
// Fn returns nil and rolled back otherwise; rollback failures are joined onto
// the returned error.
func WithTx(ctx context.Context, db *sql.DB, cfg Config) (err error) {
	tx, err := db.BeginTx(ctx, cfg.Opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
	}()
	if err = cfg.Fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
