package events

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/drill"
)

// InMemoryEventEmitter fans each outcome out to its handlers on the calling
// goroutine. Handlers that need to do slow work should hand it off, the way
// task.OutcomeEventHandler does.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var (
	_ EventEmitter          = (*InMemoryEventEmitter)(nil)
	_ drill.OutcomeRecorder = (*InMemoryEventEmitter)(nil)
)

func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler subscribes handler to every later event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	n := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("event handler registered", slog.Int("handlers", n))
}

// RecordOutcome lets the emitter stand in as a drill engine's recorder.
func (e *InMemoryEventEmitter) RecordOutcome(ctx context.Context, outcome domain.Outcome) error {
	return e.EmitEvent(ctx, NewOutcomeEvent(ctx, outcome))
}

// EmitEvent delivers event to every handler, even after one fails, and
// returns the joined handler errors.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *OutcomeEvent) error {
	e.mu.RLock()
	handlers := slices.Clone(e.handlers)
	e.mu.RUnlock()

	log := e.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("card_id", event.Outcome.CardID),
	)
	if len(handlers) == 0 {
		log.Warn("outcome dropped, no handlers registered")
		return nil
	}

	var errs []error
	for i, h := range handlers {
		if err := h.HandleEvent(ctx, event); err != nil {
			log.Error("event handler failed",
				slog.Int("handler", i),
				slog.String("session_id", event.SessionID),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
