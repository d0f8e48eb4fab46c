package ml

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotReady is returned by Predictor when no model is loaded.
	ErrModelNotReady = errors.New("model not ready")
	// ErrInsufficientData matches any *InsufficientDataError.
	ErrInsufficientData = errors.New("insufficient training data")
	// ErrCorruptModel matches any *CorruptModelError.
	ErrCorruptModel = errors.New("corrupt model artifact")
	// ErrInvalidLabel is returned when a training label is not 0 or 1.
	ErrInvalidLabel = errors.New("label must be 0 or 1")
)

// InsufficientDataError reports a corpus that cannot train a binary
// classifier.
type InsufficientDataError struct {
	Samples int
	Classes int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient training data: %d samples across %d classes, need both classes", e.Samples, e.Classes)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// CorruptModelError reports an artifact that is missing fields or has the
// wrong shape.
type CorruptModelError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptModelError) Error() string {
	msg := "corrupt model artifact"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptModelError) Unwrap() error {
	return e.Err
}

func (e *CorruptModelError) Is(target error) bool {
	return target == ErrCorruptModel
}
