package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/registry"
)

// EntityDirectory is the scheduler's view of the entity registry. The
// registry service satisfies it.
type EntityDirectory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*registry.Patient, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*registry.Doctor, error)
}

// RecordDetacher clears the appointment link on medical records when an
// appointment is deleted. The records service satisfies it.
type RecordDetacher interface {
	DetachByAppointment(ctx context.Context, appointmentID uuid.UUID) (int, error)
}

type Service struct {
	appointments AppointmentRepository
	directory    EntityDirectory
	ledger       *Ledger
	locks        *keyedMutex
	detacher     RecordDetacher
}

func NewService(appointments AppointmentRepository, directory EntityDirectory, ledger *Ledger) *Service {
	return &Service{
		appointments: appointments,
		directory:    directory,
		ledger:       ledger,
		locks:        newKeyedMutex(),
	}
}

// SetRecordDetacher wires record detachment into cascade deletes. It is set
// after construction to avoid a package cycle with the records service.
func (s *Service) SetRecordDetacher(d RecordDetacher) {
	s.detacher = d
}

// WarmLedger rebuilds slot reservations from storage. Cancelled appointments
// do not hold slots and are skipped by the repository.
func (s *Service) WarmLedger(ctx context.Context) error {
	active, err := s.appointments.AllActive(ctx)
	if err != nil {
		return fmt.Errorf("warm ledger: %w", err)
	}
	for _, a := range active {
		s.ledger.Seed(a.SlotKey(), a.ID)
	}
	return nil
}

// Book atomically reserves the slot and creates the appointment in state
// Scheduled. On any failure after the reservation the slot is released, so
// a failed booking leaves no trace.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time, startTime string, reason, notes *string) (*Appointment, error) {
	if _, err := time.Parse(TimeLayout, startTime); err != nil {
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	if _, err := s.directory.GetPatient(ctx, patientID); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	doctor, err := s.directory.GetDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	if !doctor.Available {
		return nil, ErrDoctorUnavailable
	}

	appt := &Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		StartTime: startTime,
		Status:    StatusScheduled,
		Reason:    reason,
		Notes:     notes,
	}
	key := appt.SlotKey()

	if err := s.ledger.Reserve(key, appt.ID); err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		s.ledger.Release(key)
		return nil, err
	}

	// Either entity may have been cascade-deleted between the directory
	// check and the write. A doctor cascade released our reservation, a
	// patient cascade started before our row existed and so never saw it.
	// Undo the write in both cases.
	if !s.ledger.Holds(key, appt.ID) {
		_ = s.appointments.Delete(ctx, appt.ID)
		return nil, ErrDoctorNotFound
	}
	if s.ledger.Retired(patientID) {
		_ = s.appointments.Delete(ctx, appt.ID)
		s.ledger.Release(key)
		return nil, ErrPatientNotFound
	}
	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// Transition moves the appointment to a terminal state. Transitions on the
// same appointment are linearized, so exactly one of two racing calls wins.
// Only cancellation frees the slot.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next Status) (*Appointment, error) {
	if !next.Valid() || next == StatusScheduled {
		return nil, fmt.Errorf("%w: cannot transition to %q", ErrInvalidTransition, next)
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, appt.Status, next)
	}

	if err := s.appointments.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	appt.Status = next

	if next == StatusCancelled {
		s.ledger.Release(appt.SlotKey())
	}
	return appt, nil
}

// Cancel is Transition to Cancelled. The slot becomes bookable again.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusCancelled)
}

// Complete is Transition to Completed. The slot stays consumed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusCompleted)
}

// MarkNoShow is Transition to No-show. The slot stays consumed.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusNoShow)
}

// DeleteAppointment removes the appointment outright, detaching any medical
// records that reference it and freeing its slot if it still held one.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.removeAppointment(ctx, appt)
}

func (s *Service) removeAppointment(ctx context.Context, appt *Appointment) error {
	if err := s.deleteWithDetach(ctx, appt.ID); err != nil {
		return err
	}
	if appt.Status != StatusCancelled {
		s.ledger.Release(appt.SlotKey())
	}
	return nil
}

// CascadePatientDelete removes every appointment of the patient and detaches
// records, inside the caller's transaction. The patient is retired up front
// so a booking racing the scan cleans up after itself; the slots stay
// reserved until the returned finisher reports a commit, and an abort
// reinstates the patient. Implements registry.Cascader.
func (s *Service) CascadePatientDelete(ctx context.Context, patientID uuid.UUID) (registry.CascadeFinisher, error) {
	s.ledger.Retire(patientID)

	appts, err := s.appointments.AllByPatient(ctx, patientID)
	if err != nil {
		s.ledger.Reinstate(patientID, nil)
		return nil, err
	}
	held := make([]SlotKey, 0, len(appts))
	for _, a := range appts {
		if err := s.deleteWithDetach(ctx, a.ID); err != nil {
			s.ledger.Reinstate(patientID, nil)
			return nil, err
		}
		if a.Status != StatusCancelled {
			held = append(held, a.SlotKey())
		}
	}
	return func(committed bool) {
		if !committed {
			s.ledger.Reinstate(patientID, nil)
			return
		}
		for _, key := range held {
			s.ledger.Release(key)
		}
	}, nil
}

// CascadeDoctorDelete retires the doctor in the ledger first, which frees
// their slots and rejects concurrent bookings for the whole deletion window,
// then removes their appointments inside the caller's transaction. If the
// transaction aborts, the finisher reinstates the doctor together with the
// reservations the retire released. Implements registry.Cascader.
func (s *Service) CascadeDoctorDelete(ctx context.Context, doctorID uuid.UUID) (registry.CascadeFinisher, error) {
	released := s.ledger.RetireDoctor(doctorID)

	appts, err := s.appointments.AllByDoctor(ctx, doctorID)
	if err != nil {
		s.ledger.Reinstate(doctorID, released)
		return nil, err
	}
	for _, a := range appts {
		if err := s.deleteWithDetach(ctx, a.ID); err != nil {
			s.ledger.Reinstate(doctorID, released)
			return nil, err
		}
	}
	return func(committed bool) {
		if !committed {
			s.ledger.Reinstate(doctorID, released)
		}
	}, nil
}

func (s *Service) deleteWithDetach(ctx context.Context, appointmentID uuid.UUID) error {
	if s.detacher != nil {
		if _, err := s.detacher.DetachByAppointment(ctx, appointmentID); err != nil {
			return fmt.Errorf("detach records: %w", err)
		}
	}
	return s.appointments.Delete(ctx, appointmentID)
}

// -- Queries --

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, from, to *time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, from, to, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Appointment, int, error) {
	if !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.appointments.ListByStatus(ctx, status, limit, offset)
}
