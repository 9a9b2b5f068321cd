package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/vocab-drill/internal/api/shared"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/domain/gamemode"
	"github.com/phrazzld/vocab-drill/internal/service"
	"github.com/phrazzld/vocab-drill/internal/session"
	"github.com/phrazzld/vocab-drill/internal/store"
	"github.com/phrazzld/vocab-drill/internal/vocab"
)

var (
	// ErrNotPlaying is returned when an answer, skip or intro toggle reaches a
	// session that is not in the PLAYING phase.
	ErrNotPlaying = errors.New("session is not playing")

	// ErrInvalidRequest wraps request decoding and validation failures.
	ErrInvalidRequest = errors.New("invalid request")
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, service.ErrStatsNotFound),
		errors.Is(err, vocab.ErrTopicNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, ErrNotPlaying):
		return http.StatusConflict

	// Capacity
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusServiceUnavailable

	// Bad request errors
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, session.ErrInvalidParams),
		errors.Is(err, vocab.ErrNoCards),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnsupportedLanguage),
		errors.Is(err, domain.ErrDuplicateCardID),
		errors.Is(err, domain.ErrMissingTranslation),
		errors.Is(err, domain.ErrCardIDEmpty),
		errors.Is(err, domain.ErrCardPrimaryEmpty),
		errors.Is(err, domain.ErrCardCategoryEmpty),
		errors.Is(err, domain.ErrCardTranslationInvalid),
		errors.Is(err, gamemode.ErrUnknownMode),
		errors.Is(err, gamemode.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidOutcome),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, service.ErrStatsNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Word statistics not found"

	case errors.Is(err, vocab.ErrTopicNotFound):
		return "Topic not found"

	case errors.Is(err, ErrNotPlaying):
		return "Session is not in play"

	case errors.Is(err, session.ErrTooManySessions):
		return "Too many active sessions, try again later"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)

	case errors.Is(err, ErrInvalidRequest):
		return "Invalid request body"

	case errors.Is(err, domain.ErrUnsupportedLanguage):
		return "Unsupported language"

	case errors.Is(err, gamemode.ErrUnknownMode):
		return "Unknown game mode"

	case errors.Is(err, vocab.ErrNoCards):
		return "No cards available for this selection"

	case errors.Is(err, domain.ErrDuplicateCardID):
		return "Deck contains duplicate cards"

	case errors.Is(err, domain.ErrMissingTranslation),
		errors.Is(err, domain.ErrCardTranslationInvalid):
		return "Card is missing a translation for the chosen language"

	case errors.Is(err, domain.ErrCardPrimaryEmpty),
		errors.Is(err, domain.ErrCardIDEmpty),
		errors.Is(err, domain.ErrCardCategoryEmpty),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid card data"

	case errors.Is(err, gamemode.ErrInvalidMode),
		errors.Is(err, session.ErrInvalidParams):
		return "Invalid session parameters"

	case errors.Is(err, service.ErrInvalidOutcome):
		return "Invalid outcome"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError responds with the status and safe message for err and logs
// the redacted details. fallback replaces the generic 500 message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	errMsg := err.Error()

	// Example format: "Key: 'CreateSessionRequest.Language' Error:Field validation for 'Language' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_without":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}
