package store

import (
	"errors"
	"fmt"
)

// Errors shared by every WordStatsStore backend. Backends wrap them so
// callers can match with errors.Is regardless of the storage in use.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicate     = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")
	ErrDeleteFailed  = errors.New("delete failed")

	// ErrTransactionFailed marks begin and commit failures, not errors
	// returned by the work done inside the transaction.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrWordStatsNotFound = fmt.Errorf("%w: word stats", ErrNotFound)
)

// IsNotFoundError reports whether err is, or wraps, ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError records which backend operation failed on which entity.
type StoreError struct {
	Entity    string // "word_stats"
	Operation string // "get", "upsert", "list", ...
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Entity, e.Operation, e.Message)
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err with the entity and operation it came from.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
