package records

import (
	"context"

	"github.com/google/uuid"
)

// MedicalRecordRepository defines data access for medical records. Records
// are never deleted; detaching only clears the appointment link.
type MedicalRecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	DetachByAppointment(ctx context.Context, appointmentID uuid.UUID) (int, error)
}
