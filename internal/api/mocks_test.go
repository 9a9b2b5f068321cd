package api

import (
	"context"
	"errors"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/service"
)

var errStatsBackend = errors.New("connection to postgres://drill:secret@db:5432 refused")

// failingStatsService fails every call with a backend error.
type failingStatsService struct{}

var _ service.StatsService = failingStatsService{}

func (failingStatsService) RecordOutcome(context.Context, domain.Outcome) error {
	return errStatsBackend
}

func (failingStatsService) GetStats(context.Context, string, string) (*domain.WordStats, error) {
	return nil, errStatsBackend
}

func (failingStatsService) ListStats(context.Context) ([]*domain.WordStats, error) {
	return nil, errStatsBackend
}

func (failingStatsService) StatsByCategory(context.Context, string) ([]*domain.WordStats, error) {
	return nil, errStatsBackend
}

func (failingStatsService) WordsNeedingPractice(context.Context, int) ([]*domain.WordStats, error) {
	return nil, errStatsBackend
}

func (failingStatsService) MasteryStats(context.Context) (service.MasterySummary, error) {
	return service.MasterySummary{}, errStatsBackend
}

func (failingStatsService) ClearAll(context.Context) (int64, error) {
	return 0, errStatsBackend
}
