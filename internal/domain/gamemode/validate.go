package gamemode

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Game mode configuration errors. They surface when a mode is built, before
// any session uses it.
var (
	// ErrNoRounds is returned when a mode has an empty round list.
	ErrNoRounds = errors.New("game mode has no rounds")

	// ErrInvalidMode is returned when a mode fails structural validation.
	ErrInvalidMode = errors.New("invalid game mode")

	// ErrUnknownMode is returned when a mode ID has no factory.
	ErrUnknownMode = errors.New("unknown game mode")
)

var validate = validator.New()

// Validate checks the mode's structure and the cross-field rules the struct
// tags cannot express.
func (m *GameMode) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil mode", ErrInvalidMode)
	}

	if len(m.Rounds) == 0 {
		return ErrNoRounds
	}

	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMode, err)
	}

	seen := make(map[string]struct{}, len(m.Rounds))
	for i, round := range m.Rounds {
		if _, dup := seen[round.ID]; dup {
			return fmt.Errorf("%w: duplicate round id %q", ErrInvalidMode, round.ID)
		}
		seen[round.ID] = struct{}{}

		fb := round.FailureBehavior
		switch fb.Strategy {
		case StrategyStaticOffset:
			if fb.Offset < 1 {
				return fmt.Errorf("%w: round %d: static_offset needs an offset of at least 1", ErrInvalidMode, i)
			}
		case StrategyNextRound:
			if fb.Offset != 0 {
				return fmt.Errorf("%w: round %d: next_round takes no offset", ErrInvalidMode, i)
			}
		}
	}

	return nil
}
