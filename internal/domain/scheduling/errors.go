package scheduling

import "errors"

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrDoctorUnavailable = errors.New("doctor is not accepting appointments")
	ErrSlotTaken         = errors.New("slot is already booked")
	ErrValidation        = errors.New("invalid booking request")
	ErrInvalidTransition = errors.New("invalid status transition")
)
