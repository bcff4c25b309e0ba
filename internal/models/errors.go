package models

import (
	"errors"
	"fmt"
)

// ValidationError is input the user has to correct. The operation that
// returned it left all state untouched.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Validation failures. Compare with errors.Is.
var (
	ErrNoMovement        = &ValidationError{msg: "no movement selected"}
	ErrInvalidWeightReps = &ValidationError{msg: "invalid weight/reps"}
	ErrNoSets            = &ValidationError{msg: "no sets"}
	ErrInvalidWaveCount  = &ValidationError{msg: "wave count must be 1 or 2"}
	ErrInvalidDate       = &ValidationError{msg: "date must be YYYY-MM-DD"}
	ErrInvalidUnit       = &ValidationError{msg: "unit must be lb or kg"}
	ErrInvalidIntensity  = &ValidationError{msg: "intensity must be easy, moderate or heavy"}
	ErrBlankName         = &ValidationError{msg: "movement name is required"}
)

var (
	// ErrDuplicateMovement is returned when a movement name collides
	// case-insensitively with an existing one.
	ErrDuplicateMovement = errors.New("movement already exists")
	ErrNotFound          = errors.New("not found")
)

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// DuplicateMovement wraps ErrDuplicateMovement with the offending name.
func DuplicateMovement(name string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateMovement, name)
}
