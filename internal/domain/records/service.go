package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/scheduling"
)

// AppointmentSource is the record linker's view of the scheduler. The
// scheduling service satisfies it.
type AppointmentSource interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
}

type Service struct {
	records      MedicalRecordRepository
	appointments AppointmentSource
}

func NewService(records MedicalRecordRepository, appointments AppointmentSource) *Service {
	return &Service{records: records, appointments: appointments}
}

// CreateFromAppointment files a record against a completed appointment. The
// patient and doctor are taken from the appointment itself.
func (s *Service) CreateFromAppointment(ctx context.Context, appointmentID uuid.UUID, rec *MedicalRecord) (*MedicalRecord, error) {
	appt, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, scheduling.ErrNotFound) {
			return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, appointmentID)
		}
		return nil, err
	}
	if appt.Status != scheduling.StatusCompleted {
		return nil, fmt.Errorf("%w: appointment is %s", ErrInvalidState, appt.Status)
	}

	rec.PatientID = appt.PatientID
	rec.DoctorID = appt.DoctorID
	rec.AppointmentID = &appt.ID
	if err := s.create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create files a standalone record with no appointment link, for encounters
// that never went through the scheduler.
func (s *Service) Create(ctx context.Context, rec *MedicalRecord) (*MedicalRecord, error) {
	if rec.PatientID == uuid.Nil || rec.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id and doctor_id are required", ErrValidation)
	}
	rec.AppointmentID = nil
	if err := s.create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) create(ctx context.Context, rec *MedicalRecord) error {
	if rec.Diagnosis == "" {
		return fmt.Errorf("%w: diagnosis is required", ErrValidation)
	}
	if rec.RecordDate.IsZero() {
		rec.RecordDate = time.Now().UTC()
	}
	return s.records.Create(ctx, rec)
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

// DetachByAppointment clears the appointment link on every record that
// references the appointment. Implements scheduling.RecordDetacher.
func (s *Service) DetachByAppointment(ctx context.Context, appointmentID uuid.UUID) (int, error) {
	return s.records.DetachByAppointment(ctx, appointmentID)
}
