package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentRepository defines data access for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListByDoctor(ctx context.Context, doctorID uuid.UUID, from, to *time.Time, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Appointment, int, error)

	// AllByPatient and AllByDoctor return every appointment regardless of
	// status, for cascade deletes.
	AllByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	AllByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)

	// AllActive returns every appointment still occupying a slot, for
	// rebuilding the slot ledger at startup.
	AllActive(ctx context.Context) ([]*Appointment, error)
}
