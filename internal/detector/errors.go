package detector

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches any *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoRegistry is returned by registry operations when no model
	// registry is attached.
	ErrNoRegistry = errors.New("model registry not configured")
)

// InvalidInputError reports text that cannot be analyzed.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
