package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/store"
)

const wordStatsColumns = `primary_text, translation, category, times_encountered, times_correct,
	times_incorrect, mastery_level, skipped, last_seen_at, created_at, updated_at`

const (
	getWordStatsQuery = `SELECT ` + wordStatsColumns + `
	FROM word_stats
	WHERE primary_text = $1 AND translation = $2`

	getWordStatsForUpdateQuery = getWordStatsQuery + `
	FOR UPDATE`

	seedWordStatsQuery = `INSERT INTO word_stats (primary_text, translation, category, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $4)
	ON CONFLICT (primary_text, translation) DO NOTHING`

	upsertWordStatsQuery = `INSERT INTO word_stats (` + wordStatsColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (primary_text, translation) DO UPDATE SET
		category = EXCLUDED.category,
		times_encountered = EXCLUDED.times_encountered,
		times_correct = EXCLUDED.times_correct,
		times_incorrect = EXCLUDED.times_incorrect,
		mastery_level = EXCLUDED.mastery_level,
		skipped = EXCLUDED.skipped,
		last_seen_at = GREATEST(word_stats.last_seen_at, EXCLUDED.last_seen_at),
		updated_at = EXCLUDED.updated_at`

	listWordStatsQuery = `SELECT ` + wordStatsColumns + `
	FROM word_stats
	WHERE ($1 = '' OR category = $1) AND ($2 OR NOT skipped)
	ORDER BY primary_text, translation`

	deleteAllWordStatsQuery = `DELETE FROM word_stats`
)

// PostgresWordStatsStore implements the store.WordStatsStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWordStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWordStatsStore creates a new PostgreSQL implementation of the WordStatsStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWordStatsStore(db store.DBTX, logger *slog.Logger) *PostgresWordStatsStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWordStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_stats_store")),
	}
}

// Ensure PostgresWordStatsStore implements store.WordStatsStore interface
var _ store.WordStatsStore = (*PostgresWordStatsStore)(nil)

// Get implements store.WordStatsStore.Get.
func (s *PostgresWordStatsStore) Get(
	ctx context.Context,
	primaryText, translation string,
) (*domain.WordStats, error) {
	return s.get(ctx, "get", getWordStatsQuery, primaryText, translation)
}

// GetForUpdate implements store.WordStatsStore.GetForUpdate. It must run
// inside a transaction for the row lock to mean anything.
func (s *PostgresWordStatsStore) GetForUpdate(
	ctx context.Context,
	primaryText, translation string,
) (*domain.WordStats, error) {
	return s.get(ctx, "get_for_update", getWordStatsForUpdateQuery, primaryText, translation)
}

func (s *PostgresWordStatsStore) get(
	ctx context.Context,
	op, query, primaryText, translation string,
) (*domain.WordStats, error) {
	row := s.db.QueryRowContext(ctx, query, primaryText, translation)
	stats, err := scanWordStats(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("word stats not found",
				slog.String("operation", op),
				slog.String("primary_text", primaryText))
			return nil, store.ErrWordStatsNotFound
		}
		s.logger.Error("failed to get word stats",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("word_stats", op, "query failed", MapError(err))
	}
	return stats, nil
}

// Seed implements store.WordStatsStore.Seed.
func (s *PostgresWordStatsStore) Seed(ctx context.Context, stats *domain.WordStats) error {
	if stats == nil {
		return fmt.Errorf("%w: nil word stats", store.ErrInvalidEntity)
	}
	if err := stats.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, seedWordStatsQuery,
		stats.PrimaryText, stats.Translation, stats.Category, time.Now().UTC())
	if err != nil {
		s.logger.Error("failed to seed word stats",
			slog.String("primary_text", stats.PrimaryText),
			slog.String("error", err.Error()))
		return store.NewStoreError("word_stats", "seed", "exec failed", MapError(err))
	}
	return nil
}

// Upsert implements store.WordStatsStore.Upsert.
func (s *PostgresWordStatsStore) Upsert(ctx context.Context, stats *domain.WordStats) error {
	if stats == nil {
		return fmt.Errorf("%w: nil word stats", store.ErrInvalidEntity)
	}
	if err := stats.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	now := time.Now().UTC()
	createdAt := stats.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := stats.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err := s.db.ExecContext(ctx, upsertWordStatsQuery,
		stats.PrimaryText,
		stats.Translation,
		stats.Category,
		stats.TimesEncountered,
		stats.TimesCorrect,
		stats.TimesIncorrect,
		stats.MasteryLevel,
		stats.Skipped,
		nullTime(stats.LastSeenAt),
		createdAt,
		updatedAt,
	)
	if err != nil {
		s.logger.Error("failed to upsert word stats",
			slog.String("primary_text", stats.PrimaryText),
			slog.String("error", err.Error()))
		return store.NewStoreError("word_stats", "upsert", "exec failed", MapError(err))
	}

	s.logger.Debug("word stats upserted",
		slog.String("primary_text", stats.PrimaryText),
		slog.Int("mastery_level", stats.MasteryLevel))
	return nil
}

// List implements store.WordStatsStore.List.
func (s *PostgresWordStatsStore) List(
	ctx context.Context,
	filter store.WordStatsFilter,
) ([]*domain.WordStats, error) {
	rows, err := s.db.QueryContext(ctx, listWordStatsQuery, filter.Category, filter.IncludeSkipped)
	if err != nil {
		s.logger.Error("failed to list word stats", slog.String("error", err.Error()))
		return nil, store.NewStoreError("word_stats", "list", "query failed", MapError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	result := make([]*domain.WordStats, 0)
	for rows.Next() {
		stats, err := scanWordStats(rows)
		if err != nil {
			return nil, store.NewStoreError("word_stats", "list", "scan failed", MapError(err))
		}
		result = append(result, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("word_stats", "list", "iteration failed", MapError(err))
	}

	return result, nil
}

// DeleteAll implements store.WordStatsStore.DeleteAll.
func (s *PostgresWordStatsStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, deleteAllWordStatsQuery)
	if err != nil {
		s.logger.Error("failed to delete word stats", slog.String("error", err.Error()))
		return 0, store.NewStoreError("word_stats", "delete_all", "exec failed",
			fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err)))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("word_stats", "delete_all", "rows affected unavailable", err)
	}

	s.logger.Info("word stats cleared", slog.Int64("rows", n))
	return n, nil
}

// WithTx implements store.WordStatsStore.WithTx.
func (s *PostgresWordStatsStore) WithTx(tx *sql.Tx) store.WordStatsStore {
	return &PostgresWordStatsStore{
		db:     tx,
		logger: s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWordStats(row rowScanner) (*domain.WordStats, error) {
	var (
		stats    domain.WordStats
		lastSeen sql.NullTime
	)
	err := row.Scan(
		&stats.PrimaryText,
		&stats.Translation,
		&stats.Category,
		&stats.TimesEncountered,
		&stats.TimesCorrect,
		&stats.TimesIncorrect,
		&stats.MasteryLevel,
		&stats.Skipped,
		&lastSeen,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastSeen.Valid {
		stats.LastSeenAt = lastSeen.Time.UTC()
	}
	stats.CreatedAt = stats.CreatedAt.UTC()
	stats.UpdatedAt = stats.UpdatedAt.UTC()
	return &stats, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
