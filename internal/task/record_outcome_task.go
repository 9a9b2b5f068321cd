package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/events"
)

// Common errors
var (
	ErrNilStatsRecorder = errors.New("stats recorder cannot be nil")
	ErrNilEvent         = errors.New("event cannot be nil")
)

// StatsRecorder persists a single card outcome. It is satisfied by
// service.StatsService.
type StatsRecorder interface {
	RecordOutcome(ctx context.Context, outcome domain.Outcome) error
}

// RecordOutcomeTask writes the outcome carried by one event to the stats store.
type RecordOutcomeTask struct {
	id     uuid.UUID
	event  *events.OutcomeEvent
	stats  StatsRecorder
	logger *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

var _ Task = (*RecordOutcomeTask)(nil)

// NewRecordOutcomeTask creates a pending task for event.
func NewRecordOutcomeTask(
	event *events.OutcomeEvent,
	stats StatsRecorder,
	logger *slog.Logger,
) (*RecordOutcomeTask, error) {
	if event == nil {
		return nil, ErrNilEvent
	}
	if stats == nil {
		return nil, ErrNilStatsRecorder
	}
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New()
	return &RecordOutcomeTask{
		id:    id,
		event: event,
		stats: stats,
		logger: logger.With(
			"task_id", id,
			"event_id", event.ID,
			"card_id", event.Outcome.CardID,
		),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *RecordOutcomeTask) ID() uuid.UUID { return t.id }

// Type returns TaskTypeRecordOutcome
func (t *RecordOutcomeTask) Type() string { return TaskTypeRecordOutcome }

// Payload returns the JSON encoding of the event
func (t *RecordOutcomeTask) Payload() []byte {
	data, err := json.Marshal(t.event)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return nil
	}
	return data
}

// Status returns the current task status
func (t *RecordOutcomeTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *RecordOutcomeTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// Execute records the outcome.
func (t *RecordOutcomeTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	if err := t.stats.RecordOutcome(ctx, t.event.Outcome); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to record outcome for card %q: %w", t.event.Outcome.CardID, err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Debug("outcome recorded",
		"session_id", t.event.SessionID,
		"correct", t.event.Outcome.Correct,
		"skipped", t.event.Outcome.Skipped)
	return nil
}
