package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/vocab-drill/internal/store"
)

// Common service errors. The API layer maps these to status codes.
var (
	// ErrStatsNotFound indicates that no statistics exist for a word pair.
	// API layer should map this to HTTP 404 Not Found.
	ErrStatsNotFound = errors.New("word statistics not found")

	// ErrInvalidOutcome indicates an outcome without the fields needed to
	// key a statistics entry.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidOutcome = errors.New("invalid outcome")
)

// StatsServiceError wraps errors from the stats service with context.
type StatsServiceError struct {
	// Operation is the operation that failed (e.g., "record_outcome", "list_stats")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for StatsServiceError.
func (e *StatsServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stats service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("stats service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StatsServiceError) Unwrap() error {
	return e.Err
}

// NewStatsServiceError creates a new StatsServiceError.
// It returns known sentinel errors directly without wrapping.
func NewStatsServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrStatsNotFound) || errors.Is(err, ErrInvalidOutcome) {
		return err
	}

	if store.IsNotFoundError(err) {
		return ErrStatsNotFound
	}

	return &StatsServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
