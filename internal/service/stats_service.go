package service

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// MasterySummary aggregates mastery bands over all non-skipped words.
type MasterySummary struct {
	TotalWords     int     `json:"total_words"`
	Mastered       int     `json:"mastered"`
	Learning       int     `json:"learning"`
	NeedsPractice  int     `json:"needs_practice"`
	AverageMastery float64 `json:"average_mastery"`
}

// StatsService provides word statistics operations.
type StatsService interface {
	// RecordOutcome folds one drill outcome into the statistics of its word
	// pair, creating the entry on first sight.
	RecordOutcome(ctx context.Context, outcome domain.Outcome) error

	// GetStats returns the entry for a word pair, skipped or not.
	// Returns ErrStatsNotFound when the pair has never been recorded.
	GetStats(ctx context.Context, primaryText, translation string) (*domain.WordStats, error)

	// ListStats returns every non-skipped entry.
	ListStats(ctx context.Context) ([]*domain.WordStats, error)

	// StatsByCategory returns the non-skipped entries of one category.
	StatsByCategory(ctx context.Context, category string) ([]*domain.WordStats, error)

	// WordsNeedingPractice returns up to limit entries in the needs-practice
	// band, weakest first. A limit <= 0 returns all of them.
	WordsNeedingPractice(ctx context.Context, limit int) ([]*domain.WordStats, error)

	// MasteryStats summarises the mastery bands.
	MasteryStats(ctx context.Context) (MasterySummary, error)

	// ClearAll removes every entry and reports how many were removed.
	ClearAll(ctx context.Context) (int64, error)
}

// Verify interface compliance at compile time
var _ StatsService = (*statsServiceImpl)(nil)

type statsServiceImpl struct {
	statsStore store.WordStatsStore
	db         *sql.DB
	// mu serialises read-modify-write when there is no database to lock rows.
	mu     sync.Mutex
	now    func() time.Time
	logger *slog.Logger
}

// StatsServiceOption configures a StatsService.
type StatsServiceOption func(*statsServiceImpl)

// WithDB runs RecordOutcome inside database transactions, locking the row
// with GetForUpdate.
func WithDB(db *sql.DB) StatsServiceOption {
	return func(s *statsServiceImpl) { s.db = db }
}

// WithClock replaces the clock used when an outcome carries no timestamp.
func WithClock(now func() time.Time) StatsServiceOption {
	return func(s *statsServiceImpl) { s.now = now }
}

// NewStatsService creates a new StatsService backed by statsStore.
func NewStatsService(
	statsStore store.WordStatsStore,
	logger *slog.Logger,
	opts ...StatsServiceOption,
) StatsService {
	if statsStore == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("statsStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &statsServiceImpl{
		statsStore: statsStore,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "stats_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordOutcome implements StatsService.RecordOutcome.
func (s *statsServiceImpl) RecordOutcome(ctx context.Context, outcome domain.Outcome) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(outcome.PrimaryText) == "" || strings.TrimSpace(outcome.TranslationUsed) == "" {
		log.Warn("outcome without word pair",
			slog.String("card_id", outcome.CardID))
		return fmt.Errorf("%w: primary text and translation are required", ErrInvalidOutcome)
	}

	var (
		updated *domain.WordStats
		err     error
	)
	if s.db != nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			var txErr error
			updated, txErr = s.applyOutcome(ctx, s.statsStore.WithTx(tx), outcome)
			return txErr
		})
	} else {
		s.mu.Lock()
		updated, err = s.applyOutcome(ctx, s.statsStore, outcome)
		s.mu.Unlock()
	}
	if err != nil {
		log.Error("failed to record outcome",
			slog.String("primary_text", outcome.PrimaryText),
			slog.String("error", err.Error()))
		return NewStatsServiceError("record_outcome", "failed to update word stats", err)
	}

	log.Debug("outcome recorded",
		slog.String("primary_text", updated.PrimaryText),
		slog.String("translation", updated.Translation),
		slog.Bool("correct", outcome.Correct),
		slog.Bool("skipped", outcome.Skipped),
		slog.Int("mastery_level", updated.MasteryLevel))
	return nil
}

func (s *statsServiceImpl) applyOutcome(
	ctx context.Context,
	statsStore store.WordStatsStore,
	outcome domain.Outcome,
) (*domain.WordStats, error) {
	fresh, err := domain.NewWordStats(outcome.PrimaryText, outcome.TranslationUsed, outcome.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutcome, err)
	}

	// FOR UPDATE locks nothing on a missing row, so two first sightings of
	// a word would both start from zero without the seed.
	if err := statsStore.Seed(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to seed word stats: %w", err)
	}

	current, err := statsStore.GetForUpdate(ctx, outcome.PrimaryText, outcome.TranslationUsed)
	if err != nil {
		if !store.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to load word stats: %w", err)
		}
		current = fresh
	}

	if outcome.Category != "" {
		current.Category = outcome.Category
	}

	at := outcome.OccurredAt
	if at.IsZero() {
		at = s.now()
	}

	var updated *domain.WordStats
	if outcome.Skipped {
		updated = current.WithSkipped(at)
	} else {
		updated = current.WithEncounter(outcome.Correct, at)
	}

	if err := statsStore.Upsert(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save word stats: %w", err)
	}
	return updated, nil
}

// GetStats implements StatsService.GetStats.
func (s *statsServiceImpl) GetStats(
	ctx context.Context,
	primaryText, translation string,
) (*domain.WordStats, error) {
	stats, err := s.statsStore.Get(ctx, primaryText, translation)
	if err != nil {
		return nil, NewStatsServiceError("get_stats", "failed to get word stats", err)
	}
	return stats, nil
}

// ListStats implements StatsService.ListStats.
func (s *statsServiceImpl) ListStats(ctx context.Context) ([]*domain.WordStats, error) {
	return s.list(ctx, "list_stats", store.WordStatsFilter{})
}

// StatsByCategory implements StatsService.StatsByCategory.
func (s *statsServiceImpl) StatsByCategory(
	ctx context.Context,
	category string,
) ([]*domain.WordStats, error) {
	if category == "" {
		return []*domain.WordStats{}, nil
	}
	return s.list(ctx, "stats_by_category", store.WordStatsFilter{Category: category})
}

func (s *statsServiceImpl) list(
	ctx context.Context,
	op string,
	filter store.WordStatsFilter,
) ([]*domain.WordStats, error) {
	stats, err := s.statsStore.List(ctx, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list word stats",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, NewStatsServiceError(op, "failed to list word stats", err)
	}
	return stats, nil
}

// WordsNeedingPractice implements StatsService.WordsNeedingPractice.
func (s *statsServiceImpl) WordsNeedingPractice(
	ctx context.Context,
	limit int,
) ([]*domain.WordStats, error) {
	all, err := s.list(ctx, "words_needing_practice", store.WordStatsFilter{})
	if err != nil {
		return nil, err
	}

	weak := make([]*domain.WordStats, 0, len(all))
	for _, stats := range all {
		if stats.NeedsPractice() {
			weak = append(weak, stats)
		}
	}

	slices.SortStableFunc(weak, func(a, b *domain.WordStats) int {
		if c := cmp.Compare(a.MasteryLevel, b.MasteryLevel); c != 0 {
			return c
		}
		return cmp.Compare(b.ErrorRate(), a.ErrorRate())
	})

	if limit > 0 && len(weak) > limit {
		weak = weak[:limit]
	}
	return weak, nil
}

// MasteryStats implements StatsService.MasteryStats.
func (s *statsServiceImpl) MasteryStats(ctx context.Context) (MasterySummary, error) {
	all, err := s.list(ctx, "mastery_stats", store.WordStatsFilter{})
	if err != nil {
		return MasterySummary{}, err
	}

	summary := MasterySummary{TotalWords: len(all)}
	if len(all) == 0 {
		return summary, nil
	}

	total := 0
	for _, stats := range all {
		total += stats.MasteryLevel
		switch {
		case stats.IsMastered():
			summary.Mastered++
		case stats.IsLearning():
			summary.Learning++
		default:
			summary.NeedsPractice++
		}
	}
	summary.AverageMastery = math.Round(float64(total)/float64(len(all))*100) / 100
	return summary, nil
}

// ClearAll implements StatsService.ClearAll.
func (s *statsServiceImpl) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.statsStore.DeleteAll(ctx)
	if err != nil {
		return 0, NewStatsServiceError("clear_all", "failed to clear word stats", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("word stats cleared", slog.Int64("removed", n))
	return n, nil
}
