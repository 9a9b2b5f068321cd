package domain

import "time"

// Outcome describes what happened to one card presentation. The drill engine
// emits one Outcome per answer and one per skip.
type Outcome struct {
	CardID          string            `json:"card_id"`
	PrimaryText     string            `json:"primary_text"`
	TranslationUsed string            `json:"translation_used"`
	Language        SupportedLanguage `json:"language,omitempty"`
	Category        string            `json:"category"`
	RoundID         string            `json:"round_id"`
	Correct         bool              `json:"correct"`
	Skipped         bool              `json:"skipped"`
	OccurredAt      time.Time         `json:"occurred_at"`
}
