package records

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_records table. AppointmentID is nil for
// records whose originating appointment was deleted; the clinical content is
// never removed with it.
type MedicalRecord struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Diagnosis     string     `db:"diagnosis" json:"diagnosis"`
	Prescription  *string    `db:"prescription" json:"prescription,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	RecordDate    time.Time  `db:"record_date" json:"record_date"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
