package domain

import (
	"errors"
	"fmt"
)

var (
	// Article errors
	ErrArticleNotFound = errors.New("article not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Store errors
	ErrStoreUnavailable = errors.New("article store unavailable")
)

// ValidationError provides detailed validation error information
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConnectivityError reports that the article store could not be reached or
// failed while serving a request. Its message never includes the underlying
// driver error; use Cause for logging.
type ConnectivityError struct {
	Op    string
	cause error
}

// NewConnectivityError creates a connectivity error for the named operation
func NewConnectivityError(op string, cause error) *ConnectivityError {
	return &ConnectivityError{Op: op, cause: cause}
}

func (e *ConnectivityError) Error() string {
	if e.Op == "" {
		return ErrStoreUnavailable.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, ErrStoreUnavailable)
}

// Unwrap lets errors.Is match ErrStoreUnavailable
func (e *ConnectivityError) Unwrap() error {
	return ErrStoreUnavailable
}

// Cause returns the underlying store error
func (e *ConnectivityError) Cause() error {
	return e.cause
}

// Outcome is the closed set of results an article operation can have
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotFound
	OutcomeInvalidInput
	OutcomeConnectivity
	OutcomeUnknown
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInvalidInput:
		return "invalid_input"
	case OutcomeConnectivity:
		return "connectivity"
	default:
		return "unknown"
	}
}

// Classify maps an operation error onto its Outcome
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrArticleNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, ErrStoreUnavailable):
		return OutcomeConnectivity
	default:
		return OutcomeUnknown
	}
}

// CauseOf returns the store-level cause of a connectivity error, or err itself
func CauseOf(err error) error {
	var connErr *ConnectivityError
	if errors.As(err, &connErr) && connErr.Cause() != nil {
		return connErr.Cause()
	}
	return err
}
