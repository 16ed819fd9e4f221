package registry

import "errors"

var (
	// ErrNotFound is returned when a patient or doctor does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("invalid entity")
	// ErrConflict is returned when a unique contact field or license number
	// is already registered to another entity.
	ErrConflict = errors.New("entity already registered")
)
