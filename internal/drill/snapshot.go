package drill

import (
	"log/slog"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/domain/gamemode"
)

// Summary holds running totals for a session. It is final once the engine
// reaches SUMMARY.
type Summary struct {
	TotalCards   int  `json:"total_cards"`
	Answers      int  `json:"answers"`
	Correct      int  `json:"correct"`
	Incorrect    int  `json:"incorrect"`
	Skipped      int  `json:"skipped"`
	RoundsPlayed int  `json:"rounds_played"`
	FastMastery  bool `json:"fast_mastery"`
	// MissedCardIDs lists every card missed at least once, in first-miss order.
	MissedCardIDs []string `json:"missed_card_ids"`
}

// Snapshot is the read model handed to presentation code.
type Snapshot struct {
	Phase           Phase                     `json:"phase"`
	ModeID          string                    `json:"mode_id,omitempty"`
	RoundIndex      int                       `json:"round_index"`
	RoundCount      int                       `json:"round_count"`
	Round           *gamemode.RoundDefinition `json:"round,omitempty"`
	Card            *domain.Flashcard         `json:"card,omitempty"`
	Prompt          *Prompt                   `json:"prompt,omitempty"`
	Cursor          int                       `json:"cursor"`
	DeckSize        int                       `json:"deck_size"`
	Progress        float64                   `json:"progress"`
	RoundIntroShown bool                      `json:"round_intro_shown"`
	Summary         *Summary                  `json:"summary,omitempty"`
}

// Snapshot captures the engine's read model. Card, round and prompt are only
// filled while PLAYING; the summary only in SUMMARY.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Phase:           e.phase,
		RoundIndex:      e.roundIndex,
		Cursor:          e.cursor,
		DeckSize:        len(e.deck),
		Progress:        e.Progress(),
		RoundIntroShown: e.roundIntroShown,
	}
	if e.mode != nil {
		s.ModeID = e.mode.ID
		s.RoundCount = len(e.mode.Rounds)
	}

	switch e.phase {
	case PhasePlaying:
		if round := e.CurrentRound(); round != nil {
			r := *round
			s.Round = &r
		}
		if card := e.CurrentCard(); card != nil {
			c := card.Clone()
			s.Card = &c
		}
		if prompt, ok := e.CurrentPrompt(); ok {
			s.Prompt = &prompt
		}
	case PhaseSummary:
		summary := e.Summary()
		s.Summary = &summary
	}

	return s
}

// Subscribe registers fn to receive a snapshot after every state change.
// Observers run synchronously on the caller's goroutine and must not call
// back into the engine. The returned function removes the observer.
func (e *Engine) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	id := e.nextObserver
	e.nextObserver++
	e.observers[id] = fn
	return func() { delete(e.observers, id) }
}

func (e *Engine) notify() {
	if len(e.observers) == 0 {
		return
	}
	snap := e.Snapshot()
	for id, fn := range e.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("engine observer panicked",
						slog.Int("observer", id),
						slog.Any("panic", r))
				}
			}()
			fn(snap)
		}()
	}
}
