package memory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/store"
)

type wordKey struct {
	primaryText string
	translation string
}

// WordStatsStore keeps word statistics in a map guarded by a RWMutex.
// Entries are copied on the way in and out.
type WordStatsStore struct {
	mu      sync.RWMutex
	entries map[wordKey]domain.WordStats
	logger  *slog.Logger
}

// NewWordStatsStore creates an empty store. If logger is nil, a default
// logger will be used.
func NewWordStatsStore(logger *slog.Logger) *WordStatsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &WordStatsStore{
		entries: make(map[wordKey]domain.WordStats),
		logger:  logger.With(slog.String("component", "memory_word_stats_store")),
	}
}

var _ store.WordStatsStore = (*WordStatsStore)(nil)

// Get implements store.WordStatsStore.Get.
func (s *WordStatsStore) Get(_ context.Context, primaryText, translation string) (*domain.WordStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.entries[wordKey{primaryText, translation}]
	if !ok {
		return nil, store.ErrWordStatsNotFound
	}
	return &stats, nil
}

// GetForUpdate is Get; callers serialise read-modify-write themselves.
func (s *WordStatsStore) GetForUpdate(ctx context.Context, primaryText, translation string) (*domain.WordStats, error) {
	return s.Get(ctx, primaryText, translation)
}

// Seed implements store.WordStatsStore.Seed.
func (s *WordStatsStore) Seed(_ context.Context, stats *domain.WordStats) error {
	if stats == nil {
		return fmt.Errorf("%w: nil word stats", store.ErrInvalidEntity)
	}
	if err := stats.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := wordKey{stats.PrimaryText, stats.Translation}
	if _, ok := s.entries[key]; ok {
		return nil
	}
	entry := *stats
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.entries[key] = entry
	return nil
}

// Upsert implements store.WordStatsStore.Upsert.
func (s *WordStatsStore) Upsert(_ context.Context, stats *domain.WordStats) error {
	if stats == nil {
		return fmt.Errorf("%w: nil word stats", store.ErrInvalidEntity)
	}
	if err := stats.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := *stats
	now := time.Now().UTC()
	key := wordKey{entry.PrimaryText, entry.Translation}
	if existing, ok := s.entries[key]; ok {
		entry.CreatedAt = existing.CreatedAt
	} else if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}
	s.entries[key] = entry

	s.logger.Debug("word stats upserted",
		slog.String("primary_text", entry.PrimaryText),
		slog.Int("mastery_level", entry.MasteryLevel))
	return nil
}

// List implements store.WordStatsStore.List.
func (s *WordStatsStore) List(_ context.Context, filter store.WordStatsFilter) ([]*domain.WordStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WordStats, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter.Category != "" && entry.Category != filter.Category {
			continue
		}
		if entry.Skipped && !filter.IncludeSkipped {
			continue
		}
		stats := entry
		result = append(result, &stats)
	}

	slices.SortFunc(result, func(a, b *domain.WordStats) int {
		if c := strings.Compare(a.PrimaryText, b.PrimaryText); c != 0 {
			return c
		}
		return strings.Compare(a.Translation, b.Translation)
	})
	return result, nil
}

// DeleteAll implements store.WordStatsStore.DeleteAll.
func (s *WordStatsStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.entries))
	clear(s.entries)
	s.logger.Info("word stats cleared", slog.Int64("rows", n))
	return n, nil
}

// WithTx returns the store itself; the map has no transactions.
func (s *WordStatsStore) WithTx(_ *sql.Tx) store.WordStatsStore {
	return s
}
