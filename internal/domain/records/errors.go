package records

import "errors"

var (
	ErrNotFound = errors.New("medical record not found")
	// ErrInvalidState is returned when a record is created from an
	// appointment that has not been completed.
	ErrInvalidState = errors.New("appointment is not completed")
	ErrValidation   = errors.New("invalid medical record")
)
