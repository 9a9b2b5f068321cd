package api

import (
	"time"

	"github.com/phrazzld/vocab-drill/internal/drill"
)

// CardInput is an ad-hoc card supplied with a session request.
type CardInput struct {
	English  string `json:"english"  validate:"required,max=200"`
	Polish   string `json:"polish"   validate:"max=200"`
	Spanish  string `json:"spanish"  validate:"max=200"`
	Category string `json:"category" validate:"max=100"`
}

// CreateSessionRequest starts a drill either from a catalog topic or from
// the supplied cards. Zero-valued tuning fields take the mode defaults.
type CreateSessionRequest struct {
	Language      string      `json:"language"       validate:"required"`
	Mode          string      `json:"mode"           validate:"omitempty,oneof=standard blitz"`
	Topic         string      `json:"topic"          validate:"max=100"`
	Count         int         `json:"count"          validate:"gte=0,lte=100"`
	MaxDifficulty int         `json:"max_difficulty" validate:"gte=0,lte=10"`
	FreeOnly      bool        `json:"free_only"`
	Seed          uint64      `json:"seed"`
	Cards         []CardInput `json:"cards"          validate:"max=200,dive"`

	Strategy          string `json:"strategy"           validate:"omitempty,oneof=next_round static_offset"`
	Offset            int    `json:"offset"             validate:"gte=0,lte=50"`
	RequiredSuccesses int    `json:"required_successes" validate:"gte=0,lte=10"`
}

// AnswerRequest reports an answer to the current card. Either Correct is set
// by the client (flashcard rounds) or Typed is checked against the expected
// text on the server.
type AnswerRequest struct {
	Correct *bool   `json:"correct"`
	Typed   *string `json:"typed" validate:"omitempty,max=500"`
}

// IntroRequest records whether the current round's intro has been shown.
type IntroRequest struct {
	Shown bool `json:"shown"`
}

// SessionResponse is the state of one drill session.
type SessionResponse struct {
	ID        string         `json:"id"`
	Language  string         `json:"language"`
	Topic     string         `json:"topic,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	State     drill.Snapshot `json:"state"`
}

// AnswerResponse is returned after an answer is applied.
type AnswerResponse struct {
	Correct bool            `json:"correct"`
	Session SessionResponse `json:"session"`
}

// ModesResponse lists the available game modes.
type ModesResponse struct {
	Modes []ModeResponse `json:"modes"`
}

// ModeResponse describes one mode. Rounds is only filled when a language is
// requested.
type ModeResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	RoundCount  int             `json:"round_count"`
	Rounds      []RoundResponse `json:"rounds,omitempty"`
}

// RoundResponse describes one round of a mode.
type RoundResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Template  string `json:"template"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// ClearStatsResponse reports how many entries were removed.
type ClearStatsResponse struct {
	Removed int64 `json:"removed"`
}
