package gamemode

import (
	"testing"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMode(t *testing.T) *GameMode {
	t.Helper()
	mode, err := Standard(domain.LanguagePolish, DefaultOptions())
	require.NoError(t, err)
	return mode
}

func TestGameModeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(m *GameMode)
		wantErr error
	}{
		{"valid", func(m *GameMode) {}, nil},
		{"no rounds", func(m *GameMode) { m.Rounds = nil }, ErrNoRounds},
		{"missing id", func(m *GameMode) { m.ID = "" }, ErrInvalidMode},
		{"unknown template", func(m *GameMode) { m.Rounds[0].Layout.TemplateID = "quiz" }, ErrInvalidMode},
		{"same primary and secondary", func(m *GameMode) {
			m.Rounds[1].Layout.DataMap.Secondary = m.Rounds[1].Layout.DataMap.Primary
		}, ErrInvalidMode},
		{"unknown field", func(m *GameMode) { m.Rounds[0].Layout.DataMap.Primary = "latin" }, ErrInvalidMode},
		{"zero required successes", func(m *GameMode) { m.Rounds[2].CompletionCriteria.RequiredSuccesses = 0 }, ErrInvalidMode},
		{"unknown input source", func(m *GameMode) { m.Rounds[0].InputSource = "previous_round" }, ErrInvalidMode},
		{"duplicate round ids", func(m *GameMode) { m.Rounds[1].ID = m.Rounds[0].ID }, ErrInvalidMode},
		{"static offset without offset", func(m *GameMode) {
			m.Rounds[0].FailureBehavior.Strategy = StrategyStaticOffset
		}, ErrInvalidMode},
		{"next round with offset", func(m *GameMode) { m.Rounds[0].FailureBehavior.Offset = 3 }, ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode := validMode(t)
			tt.mutate(mode)

			err := mode.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var nilMode *GameMode
	assert.ErrorIs(t, nilMode.Validate(), ErrInvalidMode)
}
