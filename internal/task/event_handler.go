package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-drill/internal/events"
)

// OutcomeEventHandler implements events.EventHandler by queuing a
// RecordOutcomeTask for every outcome event.
type OutcomeEventHandler struct {
	queue  Sink
	stats  StatsRecorder
	logger *slog.Logger
}

// Ensure OutcomeEventHandler implements events.EventHandler
var _ events.EventHandler = (*OutcomeEventHandler)(nil)

// NewOutcomeEventHandler creates a handler that feeds queue with stats writes.
func NewOutcomeEventHandler(
	queue Sink,
	stats StatsRecorder,
	logger *slog.Logger,
) *OutcomeEventHandler {
	return &OutcomeEventHandler{
		queue:  queue,
		stats:  stats,
		logger: logger.With("component", "outcome_event_handler"),
	}
}

// HandleEvent creates a task for event and enqueues it. It does not wait for
// the task to run.
func (h *OutcomeEventHandler) HandleEvent(ctx context.Context, event *events.OutcomeEvent) error {
	task, err := NewRecordOutcomeTask(event, h.stats, h.logger)
	if err != nil {
		h.logger.Error("failed to create task", "error", err)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.queue.Enqueue(task); err != nil {
		h.logger.Error("failed to enqueue task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID,
			"session_id", event.SessionID)
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	h.logger.Debug("outcome task queued",
		"task_id", task.ID(),
		"event_id", event.ID)
	return nil
}
