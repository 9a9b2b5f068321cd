package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/vocab-drill/internal/domain"
)

// WordStatsFilter narrows List results. The zero value lists every
// non-skipped entry.
type WordStatsFilter struct {
	// Category limits results to one category when non-empty.
	Category string

	// IncludeSkipped also returns entries flagged as skipped.
	IncludeSkipped bool
}

// WordStatsStore persists per-word mastery statistics keyed by the
// (primary text, translation) pair.
type WordStatsStore interface {
	// Get retrieves statistics for a word pair.
	// Returns ErrWordStatsNotFound if no entry exists.
	Get(ctx context.Context, primaryText, translation string) (*domain.WordStats, error)

	// GetForUpdate is Get with a row-level lock (SELECT ... FOR UPDATE) where
	// the backend supports it. Use it inside a transaction before Upsert.
	GetForUpdate(ctx context.Context, primaryText, translation string) (*domain.WordStats, error)

	// Seed inserts stats only when no entry exists for its pair, leaving an
	// existing entry untouched. Run it before GetForUpdate so the lock has a
	// row to hold even for a word seen for the first time.
	Seed(ctx context.Context, stats *domain.WordStats) error

	// Upsert inserts the entry or replaces the existing one for the same pair.
	// Returns ErrInvalidEntity wrapping the domain error if stats are invalid.
	Upsert(ctx context.Context, stats *domain.WordStats) error

	// List returns entries matching filter ordered by primary text.
	List(ctx context.Context, filter WordStatsFilter) ([]*domain.WordStats, error)

	// DeleteAll removes every entry and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// WithTx returns a store bound to tx. Backends without transactions
	// return themselves.
	WithTx(tx *sql.Tx) WordStatsStore
}
