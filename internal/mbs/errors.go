package mbs

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures.
type ErrorKind int

const (
	// InvalidInput means a caller-supplied value violates a precondition.
	InvalidInput ErrorKind = iota + 1
	// DegenerateSeries means a cash-flow series has no positive flow to weight.
	DegenerateSeries
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case DegenerateSeries:
		return "degenerate series"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDegenerateSeries = errors.New("degenerate series")
)

// Error is the engine's tagged error. Field and Constraint identify what was
// violated so callers can render a targeted message.
type Error struct {
	Kind       ErrorKind
	Field      string
	Constraint string
	Value      float64
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Constraint)
	}
	return fmt.Sprintf("%s: %s %s (got %g)", e.Kind, e.Field, e.Constraint, e.Value)
}

// Unwrap maps the error onto its kind sentinel.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case InvalidInput:
		return ErrInvalidInput
	case DegenerateSeries:
		return ErrDegenerateSeries
	default:
		return nil
	}
}

func invalid(field, constraint string, value float64) *Error {
	return &Error{Kind: InvalidInput, Field: field, Constraint: constraint, Value: value}
}

// Invalid builds an InvalidInput error for callers validating their own fields
// before reaching the engine.
func Invalid(field, constraint string, value float64) error {
	return invalid(field, constraint, value)
}
