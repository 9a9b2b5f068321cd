// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedLanguage is returned when a native-language code is not
	// one of the SupportedLanguage values.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrUnknownField is returned when a field key does not name a card field.
	ErrUnknownField = errors.New("unknown language field")

	// ErrDuplicateCardID is returned when two cards in one deck share an ID.
	ErrDuplicateCardID = errors.New("duplicate card ID in deck")

	// ErrMissingTranslation is returned when a card lacks a field a round needs.
	ErrMissingTranslation = errors.New("card is missing a required translation")
)
