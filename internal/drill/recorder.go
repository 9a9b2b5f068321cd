package drill

import (
	"context"

	"github.com/phrazzld/vocab-drill/internal/domain"
)

// OutcomeRecorder receives one Outcome per answered or skipped card.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, outcome domain.Outcome) error
}

// RecorderFunc adapts a function to the OutcomeRecorder interface.
type RecorderFunc func(ctx context.Context, outcome domain.Outcome) error

// RecordOutcome implements OutcomeRecorder.
func (f RecorderFunc) RecordOutcome(ctx context.Context, outcome domain.Outcome) error {
	return f(ctx, outcome)
}

// NopRecorder discards every outcome.
type NopRecorder struct{}

// RecordOutcome implements OutcomeRecorder.
func (NopRecorder) RecordOutcome(context.Context, domain.Outcome) error { return nil }
