package scheduling

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DateLayout is the wire and storage format of appointment dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire and storage format of appointment start times.
	TimeLayout = "15:04"
)

// Status is the closed set of appointment lifecycle states.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusNoShow    Status = "No-show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransitionTo reports whether s may move to next. Scheduled may move to
// any terminal state; terminal states accept nothing, including themselves.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusScheduled && next.Valid() && next != StatusScheduled
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"appointment_date" json:"appointment_date"`
	StartTime string    `db:"appointment_time" json:"appointment_time"`
	Status    Status    `db:"status" json:"status"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SlotKey identifies one bookable slot in a doctor's calendar.
type SlotKey struct {
	DoctorID uuid.UUID
	Date     string
	Time     string
}

func NewSlotKey(doctorID uuid.UUID, date time.Time, startTime string) SlotKey {
	return SlotKey{DoctorID: doctorID, Date: date.Format(DateLayout), Time: startTime}
}

func (a *Appointment) SlotKey() SlotKey {
	return NewSlotKey(a.DoctorID, a.Date, a.StartTime)
}
