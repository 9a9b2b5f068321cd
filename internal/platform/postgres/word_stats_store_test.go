package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statsColumns = []string{
	"primary_text", "translation", "category", "times_encountered", "times_correct",
	"times_incorrect", "mastery_level", "skipped", "last_seen_at", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*PostgresWordStatsStore, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresWordStatsStore(db, logger), db, mock
}

func statsRow(seen any) *sqlmock.Rows {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return sqlmock.NewRows(statsColumns).
		AddRow("Hello", "Cześć", "Basic", 3, 2, 1, 1, false, seen, created, created)
}

func TestNewPostgresWordStatsStore_NilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresWordStatsStore(nil, nil) })
}

func TestPostgresWordStatsStore_Get(t *testing.T) {
	s, _, mock := newMockStore(t)
	seen := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM word_stats WHERE primary_text = \$1 AND translation = \$2$`).
		WithArgs("Hello", "Cześć").
		WillReturnRows(statsRow(seen))

	stats, err := s.Get(context.Background(), "Hello", "Cześć")
	require.NoError(t, err)
	assert.Equal(t, "Hello", stats.PrimaryText)
	assert.Equal(t, "Basic", stats.Category)
	assert.Equal(t, 3, stats.TimesEncountered)
	assert.Equal(t, 2, stats.TimesCorrect)
	assert.Equal(t, 1, stats.TimesIncorrect)
	assert.Equal(t, 1, stats.MasteryLevel)
	assert.True(t, stats.LastSeenAt.Equal(seen))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWordStatsStore_Get_NullLastSeen(t *testing.T) {
	s, _, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM word_stats`).
		WithArgs("Hello", "Cześć").
		WillReturnRows(statsRow(nil))

	stats, err := s.Get(context.Background(), "Hello", "Cześć")
	require.NoError(t, err)
	assert.True(t, stats.LastSeenAt.IsZero())
}

func TestPostgresWordStatsStore_Get_NotFound(t *testing.T) {
	s, _, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM word_stats`).
		WithArgs("Hello", "Hola").
		WillReturnRows(sqlmock.NewRows(statsColumns))

	stats, err := s.Get(context.Background(), "Hello", "Hola")
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, store.ErrWordStatsNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestPostgresWordStatsStore_Get_SchemaMissing(t *testing.T) {
	s, _, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM word_stats`).
		WillReturnError(&pgconn.PgError{Code: undefinedTableCode, TableName: "word_stats"})

	_, err := s.Get(context.Background(), "Hello", "Cześć")
	require.Error(t, err)
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "get", storeErr.Operation)
	assert.Contains(t, err.Error(), "schema not migrated")
}

func TestPostgresWordStatsStore_GetForUpdate(t *testing.T) {
	s, _, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM word_stats WHERE .+ FOR UPDATE`).
		WithArgs("Hello", "Cześć").
		WillReturnRows(statsRow(nil))

	_, err := s.GetForUpdate(context.Background(), "Hello", "Cześć")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWordStatsStore_Upsert(t *testing.T) {
	s, _, mock := newMockStore(t)

	stats, err := domain.NewWordStats("Hello", "Cześć", "Basic")
	require.NoError(t, err)
	stats = stats.WithEncounter(true, time.Now())

	mock.ExpectExec(`INSERT INTO word_stats .+ ON CONFLICT \(primary_text, translation\) DO UPDATE`).
		WithArgs("Hello", "Cześć", "Basic", 1, 1, 0, 1, false,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Upsert(context.Background(), stats))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWordStatsStore_Seed(t *testing.T) {
	s, _, mock := newMockStore(t)

	stats, err := domain.NewWordStats("Hello", "Cześć", "Basic")
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO word_stats .+ ON CONFLICT \(primary_text, translation\) DO NOTHING`).
		WithArgs("Hello", "Cześć", "Basic", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.Seed(context.Background(), stats))

	mock.ExpectExec(`INSERT INTO word_stats`).
		WillReturnError(errors.New("connection reset"))
	err = s.Seed(context.Background(), stats)
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "seed", storeErr.Operation)

	assert.ErrorIs(t, s.Seed(context.Background(), &domain.WordStats{PrimaryText: "Hello"}), store.ErrInvalidEntity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWordStatsStore_Upsert_KeepsLatestLastSeen(t *testing.T) {
	assert.Contains(t, upsertWordStatsQuery,
		"last_seen_at = GREATEST(word_stats.last_seen_at, EXCLUDED.last_seen_at)")
}

func TestPostgresWordStatsStore_Upsert_Invalid(t *testing.T) {
	s, _, mock := newMockStore(t)

	err := s.Upsert(context.Background(), &domain.WordStats{PrimaryText: "Hello"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyStatsTranslation)

	err = s.Upsert(context.Background(), nil)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	assert.NoError(t, mock.ExpectationsWereMet(), "invalid entities never reach the database")
}

func TestPostgresWordStatsStore_Upsert_CheckViolation(t *testing.T) {
	s, _, mock := newMockStore(t)

	stats, err := domain.NewWordStats("Hello", "Cześć", "Basic")
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO word_stats`).
		WillReturnError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "word_stats_mastery_level_check"})

	err = s.Upsert(context.Background(), stats)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.Contains(t, err.Error(), "word_stats_mastery_level_check")
}

func TestPostgresWordStatsStore_List(t *testing.T) {
	s, _, mock := newMockStore(t)
	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(statsColumns).
		AddRow("Goodbye", "Do widzenia", "Basic", 1, 0, 1, 0, false, nil, created, created).
		AddRow("Hello", "Cześć", "Basic", 2, 2, 0, 1, false, created, created, created)

	mock.ExpectQuery(`SELECT .+ FROM word_stats WHERE .+ ORDER BY primary_text, translation`).
		WithArgs("Basic", false).
		WillReturnRows(rows)

	list, err := s.List(context.Background(), store.WordStatsFilter{Category: "Basic"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Goodbye", list[0].PrimaryText)
	assert.Equal(t, "Hello", list[1].PrimaryText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWordStatsStore_List_Empty(t *testing.T) {
	s, _, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM word_stats`).
		WithArgs("", true).
		WillReturnRows(sqlmock.NewRows(statsColumns))

	list, err := s.List(context.Background(), store.WordStatsFilter{IncludeSkipped: true})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPostgresWordStatsStore_List_QueryError(t *testing.T) {
	s, _, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM word_stats`).
		WillReturnError(errors.New("connection reset"))

	_, err := s.List(context.Background(), store.WordStatsFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPostgresWordStatsStore_DeleteAll(t *testing.T) {
	s, _, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM word_stats`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := s.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestPostgresWordStatsStore_DeleteAll_Error(t *testing.T) {
	s, _, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM word_stats`).
		WillReturnError(errors.New("boom"))

	_, err := s.DeleteAll(context.Background())
	assert.ErrorIs(t, err, store.ErrDeleteFailed)
}

func TestPostgresWordStatsStore_WithTx(t *testing.T) {
	s, db, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FOR UPDATE`).
		WithArgs("Hello", "Cześć").
		WillReturnRows(statsRow(nil))
	mock.ExpectExec(`INSERT INTO word_stats`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.WithTx(tx)
		current, err := txStore.GetForUpdate(ctx, "Hello", "Cześć")
		if err != nil {
			return err
		}
		return txStore.Upsert(ctx, current.WithEncounter(true, time.Now()))
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
