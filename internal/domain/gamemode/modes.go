package gamemode

import (
	"fmt"

	"github.com/phrazzld/vocab-drill/internal/domain"
)

// Mode identifiers
const (
	ModeStandard = "standard"
	ModeBlitz    = "blitz"
)

// Options tunes the failure and completion policy shared by every round of a
// mode built by this package.
type Options struct {
	Strategy          FailureStrategy
	Offset            int
	RequiredSuccesses int
}

// DefaultOptions returns the collect-and-replay policy with one required
// success per card.
func DefaultOptions() Options {
	return Options{
		Strategy:          StrategyNextRound,
		RequiredSuccesses: 1,
	}
}

func (o Options) normalized() Options {
	if o.Strategy == "" {
		o.Strategy = StrategyNextRound
	}
	if o.RequiredSuccesses <= 0 {
		o.RequiredSuccesses = 1
	}
	if o.Strategy == StrategyStaticOffset && o.Offset == 0 {
		o.Offset = DefaultStaticOffset
	}
	if o.Strategy == StrategyNextRound {
		o.Offset = 0
	}
	return o
}

// ModeInfo describes an available mode for menus.
type ModeInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Rounds      int    `json:"rounds"`
}

type factory struct {
	info  ModeInfo
	build func(native domain.LanguageField, opts Options) *GameMode
}

var factories = []factory{
	{
		info: ModeInfo{ID: ModeStandard, Description: "Classic Learning Mode", Rounds: 3},
		build: func(native domain.LanguageField, opts Options) *GameMode {
			return &GameMode{
				ID:          ModeStandard,
				Description: "Classic Learning Mode",
				Rounds: []RoundDefinition{
					recognitionRound(native, opts),
					recallRound(native, opts),
					writingRound(native, opts),
				},
			}
		},
	},
	{
		info: ModeInfo{ID: ModeBlitz, Description: "Blitz Mode - Fast Flipping", Rounds: 2},
		build: func(native domain.LanguageField, opts Options) *GameMode {
			return &GameMode{
				ID:          ModeBlitz,
				Description: "Blitz Mode - Fast Flipping",
				Rounds: []RoundDefinition{
					recognitionRound(native, opts),
					recallRound(native, opts),
				},
			}
		},
	},
}

// Available lists the modes ForID can build.
func Available() []ModeInfo {
	out := make([]ModeInfo, len(factories))
	for i, f := range factories {
		out[i] = f.info
	}
	return out
}

// Standard builds the three-round mode: Recognition, Recall, then Writing.
func Standard(lang domain.SupportedLanguage, opts Options) (*GameMode, error) {
	return ForID(ModeStandard, lang, opts)
}

// Blitz builds the two-round mode: Recognition then Recall.
func Blitz(lang domain.SupportedLanguage, opts Options) (*GameMode, error) {
	return ForID(ModeBlitz, lang, opts)
}

// ForID builds the mode with the given ID for a native language. Every call
// returns a fresh value; equal inputs give structurally equal modes.
func ForID(id string, lang domain.SupportedLanguage, opts Options) (*GameMode, error) {
	lang, err := domain.ParseLanguage(string(lang))
	if err != nil {
		return nil, err
	}

	for _, f := range factories {
		if f.info.ID != id {
			continue
		}
		mode := f.build(lang.Field(), opts.normalized())
		if err := mode.Validate(); err != nil {
			return nil, err
		}
		return mode, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, id)
}

func recognitionRound(native domain.LanguageField, opts Options) RoundDefinition {
	return newRound("recognition", "Recognition", TemplateFlashcard, domain.SourceField, native, opts)
}

func recallRound(native domain.LanguageField, opts Options) RoundDefinition {
	return newRound("recall", "Recall", TemplateFlashcard, native, domain.SourceField, opts)
}

func writingRound(native domain.LanguageField, opts Options) RoundDefinition {
	return newRound("writing", "Writing", TemplateTyping, native, domain.SourceField, opts)
}

func newRound(
	id, name string,
	template TemplateID,
	primary, secondary domain.LanguageField,
	opts Options,
) RoundDefinition {
	return RoundDefinition{
		ID:   id,
		Name: name,
		Layout: Layout{
			TemplateID: template,
			DataMap:    DataMap{Primary: primary, Secondary: secondary},
		},
		InputSource:        InputDeckStart,
		CompletionCriteria: CompletionCriteria{RequiredSuccesses: opts.RequiredSuccesses},
		FailureBehavior: FailureBehavior{
			Action:   ActionRequeue,
			Strategy: opts.Strategy,
			Offset:   opts.Offset,
		},
	}
}
