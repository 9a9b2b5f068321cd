package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Flashcard-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardPrimaryEmpty is returned when a card has no source-language text.
	ErrCardPrimaryEmpty = errors.New("card primary text cannot be empty")

	// ErrCardCategoryEmpty is returned when a card has no category.
	ErrCardCategoryEmpty = errors.New("card category cannot be empty")

	// ErrCardTranslationInvalid is returned when a translation uses an unknown
	// field key or carries an empty value.
	ErrCardTranslationInvalid = errors.New("card translation is invalid")
)

// Flashcard is a single vocabulary unit. Text fields are fixed for the life of
// a drill session; rounds only change which fields are displayed.
type Flashcard struct {
	ID           string                   `json:"id"`
	PrimaryText  string                   `json:"primary_text"`
	Translations map[LanguageField]string `json:"translations"`
	Category     string                   `json:"category"`
	// MasteryLevel is informational. The drill engine never changes it.
	MasteryLevel int `json:"mastery_level"`
}

// NewFlashcard creates a validated Flashcard.
func NewFlashcard(
	id, primaryText, category string,
	translations map[LanguageField]string,
) (*Flashcard, error) {
	card := &Flashcard{
		ID:           id,
		PrimaryText:  primaryText,
		Category:     category,
		Translations: make(map[LanguageField]string, len(translations)),
	}
	for k, v := range translations {
		card.Translations[k] = v
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
func (c *Flashcard) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrCardIDEmpty
	}

	if strings.TrimSpace(c.PrimaryText) == "" {
		return ErrCardPrimaryEmpty
	}

	if strings.TrimSpace(c.Category) == "" {
		return ErrCardCategoryEmpty
	}

	for field, text := range c.Translations {
		if !field.IsTranslation() {
			return fmt.Errorf("%w: unknown field %q", ErrCardTranslationInvalid, string(field))
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: empty %s text", ErrCardTranslationInvalid, field)
		}
	}

	return nil
}

// Field returns the text stored under a field key. FieldEnglish resolves to
// PrimaryText.
func (c *Flashcard) Field(field LanguageField) (string, bool) {
	if field == SourceField {
		return c.PrimaryText, c.PrimaryText != ""
	}
	text, ok := c.Translations[field]
	return text, ok && text != ""
}

// Clone returns a deep copy of the card.
func (c *Flashcard) Clone() Flashcard {
	out := *c
	if c.Translations != nil {
		out.Translations = make(map[LanguageField]string, len(c.Translations))
		for k, v := range c.Translations {
			out.Translations[k] = v
		}
	}
	return out
}

// ValidateDeck checks a deck before it is handed to the drill engine: every
// card must be valid, IDs must be unique and each card must carry all of the
// required fields.
func ValidateDeck(cards []Flashcard, required ...LanguageField) error {
	seen := make(map[string]struct{}, len(cards))
	for i := range cards {
		card := &cards[i]
		if err := card.Validate(); err != nil {
			return fmt.Errorf("card %d: %w", i, err)
		}

		if _, dup := seen[card.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCardID, card.ID)
		}
		seen[card.ID] = struct{}{}

		for _, field := range required {
			if !field.Valid() {
				return fmt.Errorf("%w: %q", ErrUnknownField, string(field))
			}
			if _, ok := card.Field(field); !ok {
				return fmt.Errorf("%w: card %s has no %s text", ErrMissingTranslation, card.ID, field)
			}
		}
	}
	return nil
}
