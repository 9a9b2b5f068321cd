package service

import (
	"context"
	"database/sql"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// MockWordStatsStore is a configurable store.WordStatsStore for failure paths.
type MockWordStatsStore struct {
	GetFn          func(ctx context.Context, primaryText, translation string) (*domain.WordStats, error)
	GetForUpdateFn func(ctx context.Context, primaryText, translation string) (*domain.WordStats, error)
	SeedFn         func(ctx context.Context, stats *domain.WordStats) error
	UpsertFn       func(ctx context.Context, stats *domain.WordStats) error
	ListFn         func(ctx context.Context, filter store.WordStatsFilter) ([]*domain.WordStats, error)
	DeleteAllFn    func(ctx context.Context) (int64, error)

	SeedCalls   []*domain.WordStats
	UpsertCalls []*domain.WordStats
}

var _ store.WordStatsStore = (*MockWordStatsStore)(nil)

func (m *MockWordStatsStore) Get(ctx context.Context, primaryText, translation string) (*domain.WordStats, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, primaryText, translation)
	}
	return nil, store.ErrWordStatsNotFound
}

func (m *MockWordStatsStore) GetForUpdate(ctx context.Context, primaryText, translation string) (*domain.WordStats, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, primaryText, translation)
	}
	return nil, store.ErrWordStatsNotFound
}

func (m *MockWordStatsStore) Seed(ctx context.Context, stats *domain.WordStats) error {
	m.SeedCalls = append(m.SeedCalls, stats)
	if m.SeedFn != nil {
		return m.SeedFn(ctx, stats)
	}
	return nil
}

func (m *MockWordStatsStore) Upsert(ctx context.Context, stats *domain.WordStats) error {
	m.UpsertCalls = append(m.UpsertCalls, stats)
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, stats)
	}
	return nil
}

func (m *MockWordStatsStore) List(ctx context.Context, filter store.WordStatsFilter) ([]*domain.WordStats, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return []*domain.WordStats{}, nil
}

func (m *MockWordStatsStore) DeleteAll(ctx context.Context) (int64, error) {
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx)
	}
	return 0, nil
}

func (m *MockWordStatsStore) WithTx(_ *sql.Tx) store.WordStatsStore {
	return m
}
