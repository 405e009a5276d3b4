package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors shared across packages.
var (
	// ErrNonFinite indicates a NaN or Inf where a finite value is required.
	ErrNonFinite = errors.New("dynamo: non-finite value (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownBody indicates an engine body id that does not exist.
	ErrUnknownBody = errors.New("dynamo: unknown engine body")
)

// ParamError wraps ErrParameterBounds with the offending parameter.
type ParamError struct {
	Name  string
	Value float64
	Want  string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("dynamo: parameter %s must be %s, got %g", e.Name, e.Want, e.Value)
}

func (e *ParamError) Unwrap() error {
	return ErrParameterBounds
}
