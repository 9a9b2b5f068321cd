package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/platform/memory"
	"github.com/phrazzld/vocab-drill/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...StatsServiceOption) StatsService {
	t.Helper()
	log, _ := logger.NewTestLogger()
	opts = append([]StatsServiceOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewStatsService(memory.NewWordStatsStore(log), log, opts...)
}

func encounter(primary, translation string, correct bool) domain.Outcome {
	return domain.Outcome{
		CardID:          primary,
		PrimaryText:     primary,
		TranslationUsed: translation,
		Category:        "basic",
		Correct:         correct,
	}
}

func record(t *testing.T, svc StatsService, outcome domain.Outcome, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		require.NoError(t, svc.RecordOutcome(context.Background(), outcome))
	}
}

func TestNewStatsService_NilStore(t *testing.T) {
	assert.Panics(t, func() { NewStatsService(nil, nil) })
}

func TestRecordOutcome_CreatesAndUpdates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	record(t, svc, encounter("hello", "cześć", true), 1)

	stats, err := svc.GetStats(ctx, "hello", "cześć")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TimesEncountered)
	assert.Equal(t, 1, stats.TimesCorrect)
	assert.Equal(t, 1, stats.MasteryLevel)
	assert.Equal(t, "basic", stats.Category)
	assert.Equal(t, fixedNow, stats.LastSeenAt)

	record(t, svc, encounter("hello", "cześć", false), 1)
	stats, err = svc.GetStats(ctx, "hello", "cześć")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TimesEncountered)
	assert.Equal(t, 1, stats.TimesIncorrect)
	assert.Equal(t, 1, stats.MasteryLevel)
}

func TestRecordOutcome_IncorrectOnlyStaysAtZero(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	record(t, svc, encounter("hard", "trudny", false), 2)

	stats, err := svc.GetStats(context.Background(), "hard", "trudny")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.MasteryLevel)
	assert.Equal(t, 2, stats.TimesIncorrect)
}

func TestRecordOutcome_UsesOutcomeTime(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	at := time.Date(2026, 2, 14, 8, 30, 0, 0, time.UTC)

	outcome := encounter("hello", "cześć", true)
	outcome.OccurredAt = at
	record(t, svc, outcome, 1)

	stats, err := svc.GetStats(context.Background(), "hello", "cześć")
	require.NoError(t, err)
	assert.Equal(t, at, stats.LastSeenAt)
}

func TestRecordOutcome_Skipped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	record(t, svc, encounter("skip", "pomiń", true), 1)
	skip := encounter("skip", "pomiń", false)
	skip.Skipped = true
	record(t, svc, skip, 1)

	stats, err := svc.GetStats(ctx, "skip", "pomiń")
	require.NoError(t, err)
	assert.True(t, stats.Skipped)
	assert.Equal(t, 1, stats.TimesEncountered, "skips do not count as encounters")

	list, err := svc.ListStats(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "skipped words are not listed")

	newSkip := encounter("newskip", "nowy pomin", false)
	newSkip.Skipped = true
	record(t, svc, newSkip, 1)
	stats, err = svc.GetStats(ctx, "newskip", "nowy pomin")
	require.NoError(t, err)
	assert.True(t, stats.Skipped)
	assert.Zero(t, stats.TimesEncountered)
}

func TestRecordOutcome_InvalidOutcome(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	err := svc.RecordOutcome(context.Background(), domain.Outcome{PrimaryText: "hello"})
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	err = svc.RecordOutcome(context.Background(), domain.Outcome{TranslationUsed: "cześć"})
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestRecordOutcome_StoreFailures(t *testing.T) {
	t.Parallel()
	cause := errors.New("disk full")

	t.Run("load fails", func(t *testing.T) {
		mock := &MockWordStatsStore{
			GetForUpdateFn: func(context.Context, string, string) (*domain.WordStats, error) {
				return nil, cause
			},
		}
		svc := NewStatsService(mock, nil)

		err := svc.RecordOutcome(context.Background(), encounter("hello", "cześć", true))
		assert.ErrorIs(t, err, cause)
		var svcErr *StatsServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Empty(t, mock.UpsertCalls)
	})

	t.Run("seed fails", func(t *testing.T) {
		mock := &MockWordStatsStore{
			SeedFn: func(context.Context, *domain.WordStats) error { return cause },
		}
		svc := NewStatsService(mock, nil)

		err := svc.RecordOutcome(context.Background(), encounter("hello", "cześć", true))
		assert.ErrorIs(t, err, cause)
		assert.Empty(t, mock.UpsertCalls)
	})

	t.Run("save fails", func(t *testing.T) {
		mock := &MockWordStatsStore{
			UpsertFn: func(context.Context, *domain.WordStats) error { return cause },
		}
		svc := NewStatsService(mock, nil)

		err := svc.RecordOutcome(context.Background(), encounter("hello", "cześć", true))
		assert.ErrorIs(t, err, cause)
		assert.Len(t, mock.UpsertCalls, 1)
	})
}

func TestRecordOutcome_SeedsBeforeLocking(t *testing.T) {
	t.Parallel()

	var seededFirst bool
	mock := &MockWordStatsStore{}
	mock.GetForUpdateFn = func(context.Context, string, string) (*domain.WordStats, error) {
		seededFirst = len(mock.SeedCalls) == 1
		return nil, store.ErrWordStatsNotFound
	}
	svc := NewStatsService(mock, nil)

	require.NoError(t, svc.RecordOutcome(context.Background(), encounter("hello", "cześć", true)))
	assert.True(t, seededFirst)
	require.Len(t, mock.SeedCalls, 1)
	assert.Equal(t, "hello", mock.SeedCalls[0].PrimaryText)
	assert.Zero(t, mock.SeedCalls[0].TimesEncountered)
	require.Len(t, mock.UpsertCalls, 1)
	assert.Equal(t, 1, mock.UpsertCalls[0].TimesEncountered)
}

func TestRecordOutcome_Transactional(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	statsStore := &MockWordStatsStore{}
	svc := NewStatsService(statsStore, nil, WithDB(db))

	require.NoError(t, svc.RecordOutcome(context.Background(), encounter("hello", "cześć", true)))
	require.Len(t, statsStore.UpsertCalls, 1)

	statsStore.UpsertFn = func(context.Context, *domain.WordStats) error { return errors.New("conflict") }
	err = svc.RecordOutcome(context.Background(), encounter("hello", "cześć", true))
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutcome_BeginFails(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	statsStore := &MockWordStatsStore{}
	svc := NewStatsService(statsStore, nil, WithDB(db))

	err = svc.RecordOutcome(context.Background(), encounter("hello", "cześć", true))
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
	assert.Empty(t, statsStore.UpsertCalls)
}

func TestGetStats_NotFound(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.GetStats(context.Background(), "missing", "brak")
	assert.ErrorIs(t, err, ErrStatsNotFound)
}

func TestStatsByCategory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	record(t, svc, encounter("hello", "cześć", true), 1)
	invoice := encounter("invoice", "faktura", true)
	invoice.Category = "finance"
	record(t, svc, invoice, 1)

	finance, err := svc.StatsByCategory(ctx, "finance")
	require.NoError(t, err)
	require.Len(t, finance, 1)
	assert.Equal(t, "invoice", finance[0].PrimaryText)

	none, err := svc.StatsByCategory(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWordsNeedingPractice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("excludes mastered words", func(t *testing.T) {
		svc := newTestService(t)
		record(t, svc, encounter("mastered", "opanowany", true), 10)
		record(t, svc, encounter("hard", "trudny", false), 2)

		words, err := svc.WordsNeedingPractice(ctx, 10)
		require.NoError(t, err)
		require.Len(t, words, 1)
		assert.Equal(t, "hard", words[0].PrimaryText)
	})

	t.Run("respects limit", func(t *testing.T) {
		svc := newTestService(t)
		for i := 0; i < 5; i++ {
			record(t, svc, encounter(fmt.Sprintf("word%d", i), fmt.Sprintf("słowo%d", i), false), 1)
		}

		words, err := svc.WordsNeedingPractice(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, words, 3)

		all, err := svc.WordsNeedingPractice(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("orders by mastery then error rate", func(t *testing.T) {
		svc := newTestService(t)
		record(t, svc, encounter("medium", "średni", true), 1)
		record(t, svc, encounter("lowerror", "mały błąd", false), 1)
		record(t, svc, encounter("higherror", "duży błąd", false), 3)

		words, err := svc.WordsNeedingPractice(ctx, 10)
		require.NoError(t, err)
		require.Len(t, words, 3)
		assert.Equal(t, "medium", words[2].PrimaryText, "level 1 sorts after level 0")
		assert.Equal(t, 0, words[0].MasteryLevel)
		assert.Equal(t, 0, words[1].MasteryLevel)
	})

	t.Run("error rate breaks ties", func(t *testing.T) {
		svc := newTestService(t)
		// both sit at level 1
		record(t, svc, encounter("mixed", "mieszany", true), 1)
		record(t, svc, encounter("mixed", "mieszany", false), 3)
		record(t, svc, encounter("steady", "stały", true), 1)

		words, err := svc.WordsNeedingPractice(ctx, 10)
		require.NoError(t, err)
		require.Len(t, words, 2)
		assert.Equal(t, "mixed", words[0].PrimaryText)
		assert.Equal(t, "steady", words[1].PrimaryText)
	})
}

func TestMasteryStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		svc := newTestService(t)
		summary, err := svc.MasteryStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, MasterySummary{}, summary)
	})

	t.Run("bands", func(t *testing.T) {
		svc := newTestService(t)
		record(t, svc, encounter("mastered", "opanowany", true), 10)
		record(t, svc, encounter("learning", "uczący się", true), 4)
		record(t, svc, encounter("practice", "ćwiczenie", false), 2)

		summary, err := svc.MasteryStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, MasterySummary{
			TotalWords:     3,
			Mastered:       1,
			Learning:       1,
			NeedsPractice:  1,
			AverageMastery: 2.33,
		}, summary)
	})

	t.Run("average rounded to two places", func(t *testing.T) {
		svc := newTestService(t)
		record(t, svc, encounter("level1", "poziom1", true), 1)
		record(t, svc, encounter("level2", "poziom2", true), 2)
		record(t, svc, encounter("level3", "poziom3", true), 3)

		summary, err := svc.MasteryStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.33, summary.AverageMastery)
	})

	t.Run("list failure", func(t *testing.T) {
		svc := NewStatsService(&MockWordStatsStore{
			ListFn: func(context.Context, store.WordStatsFilter) ([]*domain.WordStats, error) {
				return nil, errors.New("timeout")
			},
		}, nil)
		_, err := svc.MasteryStats(ctx)
		assert.Error(t, err)
	})
}

func TestClearAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	record(t, svc, encounter("hello", "cześć", true), 1)
	record(t, svc, encounter("bye", "pa", true), 1)

	n, err := svc.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	summary, err := svc.MasteryStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalWords)
}
