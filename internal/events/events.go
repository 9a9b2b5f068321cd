package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-drill/internal/domain"
)

// OutcomeEvent carries one card outcome from a session to its handlers.
type OutcomeEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// SessionID identifies the session that produced the outcome, when known
	SessionID string `json:"session_id,omitempty"`

	Outcome domain.Outcome `json:"outcome"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewOutcomeEvent wraps an outcome in a new event. The session id is taken
// from ctx when it was set with WithSessionID.
func NewOutcomeEvent(ctx context.Context, outcome domain.Outcome) *OutcomeEvent {
	return &OutcomeEvent{
		ID:        uuid.New(),
		SessionID: SessionIDFromContext(ctx),
		Outcome:   outcome,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *OutcomeEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *OutcomeEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *OutcomeEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *OutcomeEvent) error
}

type sessionIDKey struct{}

// WithSessionID tags ctx so outcome events emitted under it carry the session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext returns the session id stored by WithSessionID, or "".
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
