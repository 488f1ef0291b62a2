package app

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("app: validation failed")
	// ErrLoad marks a bootstrap that could not read the stored dataset.
	ErrLoad = errors.New("app: load failed")
)

// ValidationError rejects a command before any state changes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
