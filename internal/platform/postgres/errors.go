package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// SQLSTATE codes the word_stats table can raise.
const (
	uniqueViolationCode  = "23505"
	checkViolationCode   = "23514"
	notNullViolationCode = "23502"
	undefinedTableCode   = "42P01"
)

// MapError translates a driver error into the store sentinels, keeping the
// driver error in the chain. Errors it does not recognise pass through.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case checkViolationCode:
		return fmt.Errorf("%w: constraint %s: %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: column %s is null: %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
	case undefinedTableCode:
		// Usually means the server started without running migrations.
		return fmt.Errorf("schema not migrated (%s): %w", pgErr.TableName, err)
	default:
		return err
	}
}
