package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Parameter mapping errors
	ErrNonPositiveMass  = errors.New("mediator mass must be positive")
	ErrUnknownModel     = errors.New("unknown model variant")
	ErrUnknownMassUnit  = errors.New("unknown mass unit")
	ErrMissingParameter = errors.New("missing required model parameter")

	// Input validation errors
	ErrGridShape     = errors.New("grid shape mismatch")
	ErrEmptyInput    = errors.New("empty input")
	ErrMalformedRow  = errors.New("malformed input row")
	ErrSchemaInvalid = errors.New("input schema invalid")

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Error constructors with context

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewUnknownModelError(model string) error {
	return fmt.Errorf("%w: %q", ErrUnknownModel, model)
}

func NewUnknownMassUnitError(unit string) error {
	return fmt.Errorf("%w: %q", ErrUnknownMassUnit, unit)
}

func NewMissingParameterError(param, model string) error {
	return fmt.Errorf("%w: %s is required for model %q", ErrMissingParameter, param, model)
}

func NewRowError(line int, reason string) error {
	return fmt.Errorf("%w: invalid row at line %d: %s", ErrMalformedRow, line, reason)
}

func NewGridShapeError(name string, rows, cols int) error {
	return fmt.Errorf("%w: %s has shape %dx%d", ErrGridShape, name, rows, cols)
}

// Error checking helpers

func IsParameterError(err error) bool {
	return errors.Is(err, ErrNonPositiveMass) ||
		errors.Is(err, ErrUnknownModel) ||
		errors.Is(err, ErrUnknownMassUnit) ||
		errors.Is(err, ErrMissingParameter)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrGridShape) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrMalformedRow) ||
		errors.Is(err, ErrSchemaInvalid)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrSeedMismatch) ||
		errors.Is(err, ErrHashMismatch)
}
