package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/domain/gamemode"
	"github.com/phrazzld/vocab-drill/internal/drill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventEmitter_EmitEvent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errQueueFull := errors.New("outcome queue full")
	errAudit := errors.New("audit log unavailable")

	tests := []struct {
		name     string
		handlers []*MockEventHandler
		wantErrs []error
	}{
		{name: "no handlers"},
		{
			name:     "all succeed",
			handlers: []*MockEventHandler{{}, {}},
		},
		{
			name:     "failure does not stop later handlers",
			handlers: []*MockEventHandler{{HandlerError: errQueueFull}, {}},
			wantErrs: []error{errQueueFull},
		},
		{
			name:     "every failure is reported",
			handlers: []*MockEventHandler{{HandlerError: errQueueFull}, {HandlerError: errAudit}},
			wantErrs: []error{errQueueFull, errAudit},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			emitter := NewInMemoryEventEmitter(logger)
			for _, h := range tc.handlers {
				emitter.RegisterHandler(h)
			}

			event := NewOutcomeEvent(context.Background(), domain.Outcome{CardID: "1"})
			err := emitter.EmitEvent(context.Background(), event)

			if len(tc.wantErrs) == 0 {
				assert.NoError(t, err)
			}
			for _, want := range tc.wantErrs {
				assert.ErrorIs(t, err, want)
			}
			for _, h := range tc.handlers {
				assert.Equal(t, 1, h.HandledCount)
				assert.Same(t, event, h.LastEvent)
			}
		})
	}
}

func TestInMemoryEventEmitter_RecordOutcome(t *testing.T) {
	emitter := NewInMemoryEventEmitter(nil)
	handler := &MockEventHandler{}
	emitter.RegisterHandler(handler)

	outcome := domain.Outcome{CardID: "7", PrimaryText: "Hello", Correct: true}
	require.NoError(t, emitter.RecordOutcome(WithSessionID(context.Background(), "abc"), outcome))

	require.NotNil(t, handler.LastEvent)
	assert.Equal(t, outcome, handler.LastEvent.Outcome)
	assert.Equal(t, "abc", handler.LastEvent.SessionID)
}

func TestInMemoryEventEmitter_AsEngineRecorder(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := NewInMemoryEventEmitter(logger)

	var received []domain.Outcome
	emitter.RegisterHandler(EventHandlerFunc(func(_ context.Context, event *OutcomeEvent) error {
		received = append(received, event.Outcome)
		return nil
	}))

	mode, err := gamemode.Blitz(domain.LanguageSpanish, gamemode.DefaultOptions())
	require.NoError(t, err)

	engine := drill.NewEngine(drill.WithRecorder(emitter), drill.WithLogger(logger))
	engine.StartGame([]domain.Flashcard{
		{ID: "1", PrimaryText: "Hello", Translations: map[domain.LanguageField]string{domain.FieldSpanish: "Hola"}, Category: "Basic"},
		{ID: "2", PrimaryText: "Goodbye", Translations: map[domain.LanguageField]string{domain.FieldSpanish: "Adiós"}, Category: "Basic"},
	}, mode)
	engine.HandleAnswer(true)
	engine.SkipCurrentCard()

	require.Len(t, received, 2)
	assert.Equal(t, "Hola", received[0].TranslationUsed)
	assert.Equal(t, domain.LanguageSpanish, received[0].Language)
	assert.True(t, received[1].Skipped)
	assert.Equal(t, drill.PhaseSummary, engine.Phase())
}
