package pricing

import (
	"errors"
	"fmt"
)

//
// ==========================
// Error taxonomy
// ==========================
//

// Typed errors allow callers and tests to detect failure categories
// without string matching.
var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrInvalidOptionKind = errors.New("invalid option kind")
	ErrInvalidArity      = errors.New("invalid number of contract parameters")
	ErrUnknownGreek      = errors.New("unknown greek")
	ErrInvalidExpression = errors.New("invalid surface expression")
)

// ParameterError names the contract field that failed validation.
// It unwraps to ErrInvalidParameter.
type ParameterError struct {
	Field  string // json name of the field, e.g. "spot"
	Value  any    // rejected value as supplied
	Reason string // e.g. "must be > 0"
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s=%v %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
