package drill

import (
	"context"
	"log/slog"
	"time"
)

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder sets the collaborator notified of every outcome.
func WithRecorder(recorder OutcomeRecorder) Option {
	return func(e *Engine) {
		if recorder != nil {
			e.recorder = recorder
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithContext sets the context handed to the recorder. It is never used to
// cancel engine operations.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) {
		if ctx != nil {
			e.ctx = ctx
		}
	}
}

// WithClock overrides the time source used to stamp outcomes.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithStrictContract makes contract violations (answering or skipping outside
// PLAYING) panic instead of being logged. Intended for tests and debug builds.
func WithStrictContract() Option {
	return func(e *Engine) {
		e.strict = true
	}
}
