// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"math"
)

// Common application errors.
var (
	// Configuration errors.
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// Mining conditions. ErrEmptyInput and ErrSupportAnomaly describe outcomes
	// that are reported, never returned as a failed run.
	ErrEmptyInput     = errors.New("no frequent items in input")
	ErrSupportAnomaly = errors.New("support lookup anomaly")

	// Input errors.
	ErrUnsupportedFormat  = errors.New("unsupported input format")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrNotFound           = errors.New("not found")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// ValidateThresholds rejects a minimum support below 1 or a minimum
// confidence outside [0, 1].
func ValidateThresholds(minSupport int, minConfidence float64) error {
	if minSupport < 1 {
		return fmt.Errorf("%w: min support must be at least 1, got %d", ErrInvalidThreshold, minSupport)
	}
	if minConfidence < 0 || minConfidence > 1 || math.IsNaN(minConfidence) {
		return fmt.Errorf("%w: min confidence must be between 0 and 1, got %v", ErrInvalidThreshold, minConfidence)
	}
	return nil
}
