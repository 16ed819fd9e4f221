package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CascadeFinisher is returned by a successful cascade and invoked exactly
// once after the surrounding delete transaction resolves; committed reports
// whether it committed. The cascade keeps its in-memory side effects
// provisional until then, so an aborted delete leaves nothing behind.
type CascadeFinisher func(committed bool)

// Cascader removes everything that depends on a patient or doctor before the
// entity row itself is deleted. The scheduling engine implements it. A
// cascade that returns an error has already undone its own side effects.
type Cascader interface {
	CascadePatientDelete(ctx context.Context, patientID uuid.UUID) (CascadeFinisher, error)
	CascadeDoctorDelete(ctx context.Context, doctorID uuid.UUID) (CascadeFinisher, error)
}

// TxRunner runs fn inside a single storage transaction. Cascade deletes use
// it so the dependent rows and the entity row disappear together.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
	cascader Cascader
	tx       TxRunner
}

func NewService(patients PatientRepository, doctors DoctorRepository) *Service {
	return &Service{patients: patients, doctors: doctors}
}

// SetCascader wires the dependent-entity cleanup performed on deletes.
// It is set after construction to avoid a package cycle with the scheduler.
func (s *Service) SetCascader(c Cascader) {
	s.cascader = c
}

// SetTxRunner wires transactional delete scopes. Without one, deletes run
// step by step against the repositories directly.
func (s *Service) SetTxRunner(tx TxRunner) {
	s.tx = tx
}

func (s *Service) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx(ctx, fn)
}

// -- Patient --

func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if err := validatePatient(p); err != nil {
		return err
	}
	if err := s.checkPatientUnique(ctx, p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if _, err := s.patients.GetByID(ctx, p.ID); err != nil {
		return err
	}
	if err := validatePatient(p); err != nil {
		return err
	}
	if err := s.checkPatientUnique(ctx, p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

// DeletePatient removes the patient after cascading away its appointments.
// Medical records survive the cascade with their appointment link cleared.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return err
	}
	var finish CascadeFinisher
	err := s.runTx(ctx, func(ctx context.Context) error {
		if s.cascader != nil {
			f, err := s.cascader.CascadePatientDelete(ctx, id)
			if err != nil {
				return fmt.Errorf("cascade patient delete: %w", err)
			}
			finish = f
		}
		return s.patients.Delete(ctx, id)
	})
	if finish != nil {
		finish(err == nil)
	}
	return err
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func validatePatient(p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrValidation)
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("%w: date_of_birth is required", ErrValidation)
	}
	if !p.Gender.Valid() {
		return fmt.Errorf("%w: gender must be Male, Female or Other", ErrValidation)
	}
	if p.Phone == "" {
		return fmt.Errorf("%w: phone_number is required", ErrValidation)
	}
	if p.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return nil
}

// checkPatientUnique rejects a phone or email already held by another patient.
// The database unique constraints remain the backstop under concurrency.
func (s *Service) checkPatientUnique(ctx context.Context, p *Patient) error {
	if other, err := s.patients.GetByPhone(ctx, p.Phone); err == nil {
		if other.ID != p.ID {
			return fmt.Errorf("%w: phone_number %s", ErrConflict, p.Phone)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if other, err := s.patients.GetByEmail(ctx, p.Email); err == nil {
		if other.ID != p.ID {
			return fmt.Errorf("%w: email %s", ErrConflict, p.Email)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// -- Doctor --

// RegisterDoctor stores the doctor with whatever availability the caller
// chose. Defaulting a missing flag to available is the handler's concern.
func (s *Service) RegisterDoctor(ctx context.Context, d *Doctor) error {
	if err := validateDoctor(d); err != nil {
		return err
	}
	if err := s.checkDoctorUnique(ctx, d); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if _, err := s.doctors.GetByID(ctx, d.ID); err != nil {
		return err
	}
	if err := validateDoctor(d); err != nil {
		return err
	}
	if err := s.checkDoctorUnique(ctx, d); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

// DeleteDoctor cascades away the doctor's appointments and frees every slot
// they held before removing the doctor row. New bookings against the doctor
// fail for the whole deletion window.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		return err
	}
	var finish CascadeFinisher
	err := s.runTx(ctx, func(ctx context.Context) error {
		if s.cascader != nil {
			f, err := s.cascader.CascadeDoctorDelete(ctx, id)
			if err != nil {
				return fmt.Errorf("cascade doctor delete: %w", err)
			}
			finish = f
		}
		return s.doctors.Delete(ctx, id)
	})
	if finish != nil {
		finish(err == nil)
	}
	return err
}

func (s *Service) ListDoctors(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, specialization, limit, offset)
}

func validateDoctor(d *Doctor) error {
	if d.FirstName == "" || d.LastName == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrValidation)
	}
	if d.Specialization == "" {
		return fmt.Errorf("%w: specialization is required", ErrValidation)
	}
	if d.Phone == "" {
		return fmt.Errorf("%w: phone_number is required", ErrValidation)
	}
	if d.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if d.LicenseNumber == "" {
		return fmt.Errorf("%w: license_number is required", ErrValidation)
	}
	return nil
}

func (s *Service) checkDoctorUnique(ctx context.Context, d *Doctor) error {
	if other, err := s.doctors.GetByPhone(ctx, d.Phone); err == nil {
		if other.ID != d.ID {
			return fmt.Errorf("%w: phone_number %s", ErrConflict, d.Phone)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if other, err := s.doctors.GetByEmail(ctx, d.Email); err == nil {
		if other.ID != d.ID {
			return fmt.Errorf("%w: email %s", ErrConflict, d.Email)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if other, err := s.doctors.GetByLicense(ctx, d.LicenseNumber); err == nil {
		if other.ID != d.ID {
			return fmt.Errorf("%w: license_number %s", ErrConflict, d.LicenseNumber)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
