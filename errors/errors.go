// Package errors defines the sentinel error classes shared across the
// service layer so handlers can map failures to HTTP responses without
// string matching.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the requested user or resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput: a request field is missing or malformed. Wrap with
	// the user-facing validation message.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDatabaseOperation: the backing store rejected or failed an operation.
	ErrDatabaseOperation = errors.New("database operation failed")

	// ErrLLMCommunication: the chat or embedding server could not be
	// reached or returned garbage. Chat paths downgrade this to a canned
	// fallback instead of surfacing it.
	ErrLLMCommunication = errors.New("llm communication failed")
)

// WrapError prefixes err with a context message, preserving errors.Is
// classification.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf is WrapError with Printf-style message formatting.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

func IsDatabaseOperation(err error) bool { return errors.Is(err, ErrDatabaseOperation) }

func IsLLMCommunication(err error) bool { return errors.Is(err, ErrLLMCommunication) }
