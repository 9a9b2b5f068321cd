package drill

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/domain/gamemode"
)

// Phase is the coarse state of a session.
type Phase string

// Session phases
const (
	PhaseMenu    Phase = "MENU"
	PhasePlaying Phase = "PLAYING"
	PhaseSummary Phase = "SUMMARY"
)

// Engine owns the state of one drill session. The zero value is not usable;
// create engines with NewEngine.
type Engine struct {
	mode       *gamemode.GameMode
	phase      Phase
	roundIndex int
	deck       []domain.Flashcard
	cursor     int
	missed     []string
	missedSet  map[string]struct{}
	// roundMisses counts wrong answers in the current round. Skips drop
	// cards from missed but never lower this.
	roundMisses     int
	successes       map[string]int
	roundIntroShown bool
	summary         Summary
	everMissed      map[string]struct{}

	recorder OutcomeRecorder
	logger   *slog.Logger
	ctx      context.Context
	now      func() time.Time
	strict   bool

	observers    map[int]func(Snapshot)
	nextObserver int
}

// NewEngine creates an engine in the MENU phase.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		recorder:  NopRecorder{},
		logger:    slog.Default(),
		ctx:       context.Background(),
		now:       time.Now,
		observers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("component", "drill_engine"))
	e.clearState()
	return e
}

func (e *Engine) clearState() {
	e.mode = nil
	e.phase = PhaseMenu
	e.roundIndex = 0
	e.deck = []domain.Flashcard{}
	e.cursor = 0
	e.missed = nil
	e.missedSet = make(map[string]struct{})
	e.roundMisses = 0
	e.successes = make(map[string]int)
	e.roundIntroShown = false
	e.summary = Summary{}
	e.everMissed = make(map[string]struct{})
}

// StartGame begins a session over deck using mode. The deck is copied and
// presented in the order given; shuffling is the caller's job. An empty deck,
// a nil mode or a mode without rounds ends the session immediately.
func (e *Engine) StartGame(deck []domain.Flashcard, mode *gamemode.GameMode) {
	if e.phase == PhasePlaying {
		e.logger.Debug("restarting session that was still in progress",
			slog.Int("round_index", e.roundIndex),
			slog.Int("cursor", e.cursor))
	}

	e.clearState()
	e.mode = mode
	e.deck = make([]domain.Flashcard, len(deck))
	for i := range deck {
		e.deck[i] = deck[i].Clone()
	}
	e.summary.TotalCards = len(deck)
	e.phase = PhasePlaying

	switch {
	case len(e.deck) == 0:
		e.logger.Debug("empty deck, going straight to summary")
		e.phase = PhaseSummary
	case mode == nil || len(mode.Rounds) == 0:
		e.logger.Warn("game mode has no rounds, going straight to summary")
		e.phase = PhaseSummary
	default:
		e.summary.RoundsPlayed = 1
		e.logger.Debug("session started",
			slog.String("mode_id", mode.ID),
			slog.Int("cards", len(e.deck)),
			slog.Int("rounds", len(mode.Rounds)))
	}

	e.notify()
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// RoundIndex returns the index of the current round in the mode.
func (e *Engine) RoundIndex() int { return e.roundIndex }

// Cursor returns the position of the current card in the working deck.
func (e *Engine) Cursor() int { return e.cursor }

// Remaining returns the length of the current round's working deck.
func (e *Engine) Remaining() int { return len(e.deck) }

// RoundIntroShown reports whether the intro screen for the current round has
// been dismissed.
func (e *Engine) RoundIntroShown() bool { return e.roundIntroShown }

// SetRoundIntroShown records whether the current round's intro was dismissed.
func (e *Engine) SetRoundIntroShown(shown bool) {
	if e.roundIntroShown == shown {
		return
	}
	e.roundIntroShown = shown
	e.notify()
}

// Mode returns the mode of the running session, or nil.
func (e *Engine) Mode() *gamemode.GameMode { return e.mode }

// WorkingDeck returns a copy of the current round's working deck.
func (e *Engine) WorkingDeck() []domain.Flashcard {
	return slices.Clone(e.deck)
}

// MissedCardIDs returns the IDs missed so far in the current round, in the
// order they were first missed.
func (e *Engine) MissedCardIDs() []string {
	return slices.Clone(e.missed)
}

// CurrentCard returns the card being presented, or nil when the working deck
// is exhausted.
func (e *Engine) CurrentCard() *domain.Flashcard {
	if e.cursor < len(e.deck) {
		return &e.deck[e.cursor]
	}
	return nil
}

// CurrentRound returns the definition of the current round, or nil when the
// round index is outside the mode.
func (e *Engine) CurrentRound() *gamemode.RoundDefinition {
	if e.mode == nil || e.roundIndex < 0 || e.roundIndex >= len(e.mode.Rounds) {
		return nil
	}
	return &e.mode.Rounds[e.roundIndex]
}

// Prompt is the text shown for the current card and the answer expected back.
type Prompt struct {
	Text     string `json:"text"`
	Expected string `json:"expected"`
}

// CurrentPrompt resolves the current card through the round's data map.
func (e *Engine) CurrentPrompt() (Prompt, bool) {
	card, round := e.CurrentCard(), e.CurrentRound()
	if card == nil || round == nil {
		return Prompt{}, false
	}
	text, ok := card.Field(round.Layout.DataMap.Primary)
	if !ok {
		return Prompt{}, false
	}
	expected, ok := card.Field(round.Layout.DataMap.Secondary)
	if !ok {
		return Prompt{}, false
	}
	return Prompt{Text: text, Expected: expected}, true
}

// Progress returns how far through the working deck the cursor is, as a
// percentage. It is 0 for an empty deck and never exceeds 100.
func (e *Engine) Progress() float64 {
	if len(e.deck) == 0 {
		return 0
	}
	p := float64(e.cursor) / float64(len(e.deck)) * 100
	if p > 100 {
		return 100
	}
	return p
}

// HandleAnswer records the learner's verdict on the current card and moves on.
// A miss is remembered for the next round; with the static_offset strategy the
// card is also reinserted later in this round. Finishing the working deck
// advances the round.
func (e *Engine) HandleAnswer(correct bool) {
	card := e.CurrentCard()
	if e.phase != PhasePlaying || card == nil {
		e.violation("handle_answer")
		return
	}

	current := *card
	round := e.CurrentRound()
	e.record(e.outcome(current, round, correct, false))

	e.summary.Answers++
	if correct {
		e.summary.Correct++
	} else {
		e.summary.Incorrect++
	}

	policy := round.FailureBehavior
	switch {
	case !correct:
		e.roundMisses++
		e.markMissed(current.ID)
		if policy.Strategy == gamemode.StrategyStaticOffset {
			e.requeue(current, policy.Offset)
		}
	case round.CompletionCriteria.RequiredSuccesses > 1:
		e.successes[current.ID]++
		if e.successes[current.ID] < round.CompletionCriteria.RequiredSuccesses {
			offset := 0
			if policy.Strategy == gamemode.StrategyStaticOffset {
				offset = policy.Offset
			}
			e.requeue(current, offset)
		}
	}

	e.cursor++
	if e.cursor >= len(e.deck) {
		e.advanceRound()
	}

	e.notify()
}

// SkipCurrentCard drops the current card from the session. Skips are reported
// to the recorder as skips, never as misses. If the skip empties the round the
// session either ends (no misses) or advances with the misses collected.
func (e *Engine) SkipCurrentCard() {
	card := e.CurrentCard()
	if e.phase != PhasePlaying {
		e.violation("skip_current_card")
		return
	}
	if card == nil {
		e.logger.Debug("skip ignored, no current card")
		return
	}

	current := *card
	e.record(e.outcome(current, e.CurrentRound(), false, true))
	e.summary.Skipped++

	// Drop the card and any requeued copies still ahead of the cursor.
	head, tail := e.deck[:e.cursor], e.deck[e.cursor:]
	tail = slices.DeleteFunc(slices.Clone(tail), func(c domain.Flashcard) bool {
		return c.ID == current.ID
	})
	e.deck = append(slices.Clone(head), tail...)
	e.forgetMiss(current.ID)

	if e.cursor >= len(e.deck) {
		if len(e.missed) == 0 {
			e.finish()
		} else {
			e.advanceRound()
		}
	}

	e.notify()
}

// Reset abandons any session and returns to the MENU phase. It is always
// safe to call.
func (e *Engine) Reset() {
	e.clearState()
	e.notify()
}

// Summary returns the running totals for the session.
func (e *Engine) Summary() Summary {
	s := e.summary
	s.MissedCardIDs = slices.Clone(e.summary.MissedCardIDs)
	return s
}

// advanceRound closes the current round. No misses ends the whole session;
// otherwise the missed cards, in the order they appeared, become the next
// round's working deck.
func (e *Engine) advanceRound() {
	if len(e.missed) == 0 {
		e.finish()
		return
	}

	next := make([]domain.Flashcard, 0, len(e.missed))
	added := make(map[string]struct{}, len(e.missed))
	for _, card := range e.deck {
		if _, missed := e.missedSet[card.ID]; !missed {
			continue
		}
		if _, dup := added[card.ID]; dup {
			continue
		}
		added[card.ID] = struct{}{}
		next = append(next, card)
	}

	e.deck = next
	e.cursor = 0
	e.missed = nil
	e.missedSet = make(map[string]struct{})
	e.roundMisses = 0
	e.successes = make(map[string]int)
	e.roundIntroShown = false
	e.roundIndex++

	if e.mode == nil || e.roundIndex >= len(e.mode.Rounds) {
		e.logger.Debug("final round completed with misses",
			slog.Int("unresolved_cards", len(next)))
		e.phase = PhaseSummary
		return
	}

	e.summary.RoundsPlayed++
	e.logger.Debug("advanced to next round",
		slog.Int("round_index", e.roundIndex),
		slog.Int("cards", len(next)))
}

// finish ends the session because no missed card is left to carry forward.
// It only counts as fast mastery when the round had no wrong answers at all;
// skipping every card that was missed does not qualify. The round index is
// left where it is.
func (e *Engine) finish() {
	if e.mode != nil && e.roundIndex < len(e.mode.Rounds)-1 && e.roundMisses == 0 {
		e.summary.FastMastery = true
	}
	e.phase = PhaseSummary
	e.logger.Debug("no misses left to carry, session finished",
		slog.Int("round_index", e.roundIndex),
		slog.Bool("fast_mastery", e.summary.FastMastery))
}

func (e *Engine) markMissed(id string) {
	if _, ok := e.everMissed[id]; !ok {
		e.everMissed[id] = struct{}{}
		e.summary.MissedCardIDs = append(e.summary.MissedCardIDs, id)
	}
	if _, ok := e.missedSet[id]; ok {
		return
	}
	e.missedSet[id] = struct{}{}
	e.missed = append(e.missed, id)
}

func (e *Engine) forgetMiss(id string) {
	if _, ok := e.missedSet[id]; !ok {
		return
	}
	delete(e.missedSet, id)
	e.missed = slices.DeleteFunc(e.missed, func(m string) bool { return m == id })
}

// requeue inserts card offset positions after the cursor, or at the end of
// the working deck when offset is not positive or runs past the end.
func (e *Engine) requeue(card domain.Flashcard, offset int) {
	pos := e.cursor + offset
	if offset <= 0 || pos > len(e.deck) {
		pos = len(e.deck)
	}
	e.deck = slices.Insert(e.deck, pos, card)
}

func (e *Engine) outcome(
	card domain.Flashcard,
	round *gamemode.RoundDefinition,
	correct, skipped bool,
) domain.Outcome {
	o := domain.Outcome{
		CardID:      card.ID,
		PrimaryText: card.PrimaryText,
		Category:    card.Category,
		Correct:     correct,
		Skipped:     skipped,
		OccurredAt:  e.now().UTC(),
	}
	if round != nil {
		field := round.TranslationField()
		o.RoundID = round.ID
		o.Language = field.Language()
		o.TranslationUsed, _ = card.Field(field)
	}
	return o
}

// record hands an outcome to the recorder. Recorder failures stay here.
func (e *Engine) record(outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("outcome recorder panicked",
				slog.Any("panic", r),
				slog.String("card_id", outcome.CardID))
		}
	}()

	if err := e.recorder.RecordOutcome(e.ctx, outcome); err != nil {
		e.logger.Warn("failed to record outcome",
			slog.String("error", err.Error()),
			slog.String("card_id", outcome.CardID),
			slog.Bool("skipped", outcome.Skipped))
	}
}

func (e *Engine) violation(op string) {
	msg := fmt.Sprintf("drill: %s called in phase %s", op, e.phase)
	if e.phase == PhasePlaying {
		msg = fmt.Sprintf("drill: %s called with no current card", op)
	}
	if e.strict {
		// ALLOW-PANIC: strict mode turns caller contract violations into failures
		panic(msg)
	}
	e.logger.Warn("ignored engine call outside its contract",
		slog.String("operation", op),
		slog.String("phase", string(e.phase)))
}
