package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-drill/internal/platform/logger"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx, so a store can
// run against either.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFn is the work done inside RunInTransaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn in a transaction on db and commits when fn
// returns nil.
//
// An error from fn rolls back and is returned as is, so callers can still
// match their own sentinels. A panic in fn rolls back and is re-raised.
// Only begin and commit failures are wrapped in ErrTransactionFailed.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrTransactionFailed, err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback after panic failed", slog.String("error", rbErr.Error()))
		}
		// ALLOW-PANIC: Propagating caught panic from transaction
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		return rollback(log, tx, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrTransactionFailed, err)
	}
	return nil
}

func rollback(log *slog.Logger, tx *sql.Tx, cause error) error {
	if err := tx.Rollback(); err != nil {
		log.Error("rollback failed",
			slog.String("rollback_error", err.Error()),
			slog.String("cause", cause.Error()))
		return fmt.Errorf("error rolling back transaction: %v (original error: %w)", err, cause)
	}
	log.Debug("transaction rolled back", slog.String("cause", cause.Error()))
	return cause
}
