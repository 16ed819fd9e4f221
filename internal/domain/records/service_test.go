package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/scheduling"
)

// -- Mock Record Repository --

type mockRecordRepo struct {
	records map[uuid.UUID]*MedicalRecord
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[uuid.UUID]*MedicalRecord)}
}

func (m *mockRecordRepo) Create(_ context.Context, r *MedicalRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now()
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var result []*MedicalRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

func (m *mockRecordRepo) DetachByAppointment(_ context.Context, appointmentID uuid.UUID) (int, error) {
	var n int
	for _, r := range m.records {
		if r.AppointmentID != nil && *r.AppointmentID == appointmentID {
			r.AppointmentID = nil
			n++
		}
	}
	return n, nil
}

// -- Mock Appointment Source --

type mockAppointmentSource struct {
	appts map[uuid.UUID]*scheduling.Appointment
}

func newMockAppointmentSource() *mockAppointmentSource {
	return &mockAppointmentSource{appts: make(map[uuid.UUID]*scheduling.Appointment)}
}

func (m *mockAppointmentSource) GetAppointment(_ context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	return a, nil
}

func (m *mockAppointmentSource) add(status scheduling.Status) *scheduling.Appointment {
	a := &scheduling.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime: "09:30",
		Status:    status,
	}
	m.appts[a.ID] = a
	return a
}

func newTestService() (*Service, *mockRecordRepo, *mockAppointmentSource) {
	repo := newMockRecordRepo()
	source := newMockAppointmentSource()
	return NewService(repo, source), repo, source
}

func TestCreateFromAppointment(t *testing.T) {
	svc, _, source := newTestService()
	appt := source.add(scheduling.StatusCompleted)

	rec, err := svc.CreateFromAppointment(context.Background(), appt.ID, &MedicalRecord{Diagnosis: "Influenza"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.PatientID != appt.PatientID || rec.DoctorID != appt.DoctorID {
		t.Error("expected patient and doctor to come from the appointment")
	}
	if rec.AppointmentID == nil || *rec.AppointmentID != appt.ID {
		t.Error("expected record to link back to the appointment")
	}
	if rec.RecordDate.IsZero() {
		t.Error("expected record date to default")
	}
}

func TestCreateFromAppointment_NotCompleted(t *testing.T) {
	svc, _, source := newTestService()

	for _, status := range []scheduling.Status{scheduling.StatusScheduled, scheduling.StatusCancelled, scheduling.StatusNoShow} {
		appt := source.add(status)
		_, err := svc.CreateFromAppointment(context.Background(), appt.ID, &MedicalRecord{Diagnosis: "Influenza"})
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("status %s: expected ErrInvalidState, got %v", status, err)
		}
	}
}

func TestCreateFromAppointment_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateFromAppointment(context.Background(), uuid.New(), &MedicalRecord{Diagnosis: "Influenza"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateFromAppointment_MissingDiagnosis(t *testing.T) {
	svc, _, source := newTestService()
	appt := source.add(scheduling.StatusCompleted)

	_, err := svc.CreateFromAppointment(context.Background(), appt.ID, &MedicalRecord{})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestCreate_Standalone(t *testing.T) {
	svc, _, _ := newTestService()

	rec, err := svc.Create(context.Background(), &MedicalRecord{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Diagnosis: "Hypertension",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.AppointmentID != nil {
		t.Error("expected standalone record to have no appointment link")
	}
}

func TestCreate_MissingEntities(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), &MedicalRecord{Diagnosis: "Hypertension"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestDetachByAppointment_KeepsRecords(t *testing.T) {
	svc, repo, source := newTestService()
	appt := source.add(scheduling.StatusCompleted)

	rec, err := svc.CreateFromAppointment(context.Background(), appt.ID, &MedicalRecord{Diagnosis: "Influenza"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := svc.DetachByAppointment(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 detached record, got %d", n)
	}

	// The record survives with its link cleared.
	got, err := repo.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("expected record to survive, got %v", err)
	}
	if got.AppointmentID != nil {
		t.Error("expected appointment link to be cleared")
	}
	if got.Diagnosis != "Influenza" {
		t.Errorf("clinical content was modified: %s", got.Diagnosis)
	}
}

func TestListByPatient(t *testing.T) {
	svc, _, source := newTestService()
	appt := source.add(scheduling.StatusCompleted)

	if _, err := svc.CreateFromAppointment(context.Background(), appt.ID, &MedicalRecord{Diagnosis: "Influenza"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recs, total, err := svc.ListByPatient(context.Background(), appt.PatientID, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	recs, total, err = svc.ListByPatient(context.Background(), uuid.New(), 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(recs) != 0 {
		t.Errorf("expected no records for unknown patient")
	}
}
