// Package gamemode describes drill game modes: an ordered list of rounds, each
// with a display layout, a completion rule and a failure (requeue) policy.
// Modes are plain values produced by pure factory functions.
package gamemode

import (
	"github.com/phrazzld/vocab-drill/internal/domain"
)

// TemplateID selects how the presentation layer renders a round.
type TemplateID string

// Known round templates
const (
	TemplateFlashcard TemplateID = "flashcard_standard"
	TemplateTyping    TemplateID = "typing_challenge"
)

// InputSource selects where a round takes its cards from.
type InputSource string

// InputDeckStart starts a round from the full set handed to it.
const InputDeckStart InputSource = "deck_start"

// FailureAction names what happens to a missed card.
type FailureAction string

// ActionRequeue schedules a missed card to be shown again.
const ActionRequeue FailureAction = "requeue"

// FailureStrategy selects when a requeued card comes back.
type FailureStrategy string

const (
	// StrategyNextRound collects misses and replays them as the next round's
	// working deck. Nothing is reinserted within the round.
	StrategyNextRound FailureStrategy = "next_round"

	// StrategyStaticOffset reinserts a missed card Offset positions after the
	// current one in the round's working sequence. The miss still carries the
	// card into the next round.
	StrategyStaticOffset FailureStrategy = "static_offset"
)

// DefaultStaticOffset is the reinsertion distance used by static_offset when
// no explicit offset is configured.
const DefaultStaticOffset = 3

// DataMap chooses which card field is the prompt and which is the answer.
type DataMap struct {
	Primary   domain.LanguageField `json:"primary" validate:"required,oneof=english polish spanish"`
	Secondary domain.LanguageField `json:"secondary" validate:"required,oneof=english polish spanish,nefield=Primary"`
}

// Layout determines how a round is rendered.
type Layout struct {
	TemplateID TemplateID `json:"template_id" validate:"required,oneof=flashcard_standard typing_challenge"`
	DataMap    DataMap    `json:"data_map"`
}

// CompletionCriteria decides when a card is passed for a round.
type CompletionCriteria struct {
	RequiredSuccesses int `json:"required_successes" validate:"gte=1"`
}

// FailureBehavior decides what happens when a card is answered incorrectly.
type FailureBehavior struct {
	Action   FailureAction   `json:"action" validate:"required,oneof=requeue"`
	Strategy FailureStrategy `json:"strategy" validate:"required,oneof=next_round static_offset"`
	// Offset is only meaningful for static_offset.
	Offset int `json:"offset" validate:"gte=0"`
}

// RoundDefinition is the static configuration of one round.
type RoundDefinition struct {
	ID                 string             `json:"id" validate:"required"`
	Name               string             `json:"name" validate:"required"`
	Layout             Layout             `json:"layout"`
	InputSource        InputSource        `json:"input_source" validate:"required,oneof=deck_start"`
	CompletionCriteria CompletionCriteria `json:"completion_criteria"`
	FailureBehavior    FailureBehavior    `json:"failure_behavior"`
}

// TranslationField returns the native-language field shown in this round,
// whichever side of the layout it sits on.
func (r *RoundDefinition) TranslationField() domain.LanguageField {
	if r.Layout.DataMap.Primary.IsTranslation() {
		return r.Layout.DataMap.Primary
	}
	return r.Layout.DataMap.Secondary
}

// GameMode is an ordered sequence of rounds. It is not modified once a
// session starts.
type GameMode struct {
	ID          string            `json:"id" validate:"required"`
	Description string            `json:"description"`
	Rounds      []RoundDefinition `json:"rounds" validate:"dive"`
}

// Fields returns every card field referenced by the mode's layouts, in first
// use order. Decks must carry all of them.
func (m *GameMode) Fields() []domain.LanguageField {
	var fields []domain.LanguageField
	seen := make(map[domain.LanguageField]struct{})
	for _, round := range m.Rounds {
		for _, f := range []domain.LanguageField{round.Layout.DataMap.Primary, round.Layout.DataMap.Secondary} {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			fields = append(fields, f)
		}
	}
	return fields
}
