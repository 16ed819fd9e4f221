package scheduling

import (
	"sync"

	"github.com/google/uuid"
)

// Ledger serializes slot reservations. Every booking must win its slot here
// before the appointment row is written, so two concurrent requests for the
// same (doctor, date, time) can never both succeed. The database unique
// index is the backstop, the ledger is the arbiter.
//
// The retired set holds patients and doctors whose cascade delete is in
// flight or committed. A cascade that aborts reinstates its entity, so the
// set never outlives a rolled-back delete.
type Ledger struct {
	mu           sync.Mutex
	reservations map[SlotKey]uuid.UUID
	retired      map[uuid.UUID]bool
}

func NewLedger() *Ledger {
	return &Ledger{
		reservations: make(map[SlotKey]uuid.UUID),
		retired:      make(map[uuid.UUID]bool),
	}
}

// Reserve claims the slot for the given appointment. It fails with
// ErrSlotTaken if any live appointment holds the slot, and with
// ErrDoctorNotFound if the doctor is being deleted.
func (l *Ledger) Reserve(key SlotKey, appointmentID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.retired[key.DoctorID] {
		return ErrDoctorNotFound
	}
	if _, taken := l.reservations[key]; taken {
		return ErrSlotTaken
	}
	l.reservations[key] = appointmentID
	return nil
}

// Release frees the slot. Releasing a free slot is a no-op.
func (l *Ledger) Release(key SlotKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.reservations, key)
}

// Holds reports whether the slot is currently reserved by the given
// appointment.
func (l *Ledger) Holds(key SlotKey, appointmentID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	holder, ok := l.reservations[key]
	return ok && holder == appointmentID
}

// Reserved reports whether the slot is held by any appointment.
func (l *Ledger) Reserved(key SlotKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.reservations[key]
	return ok
}

// RetireDoctor releases every slot the doctor holds and blocks new
// reservations for them. Both happen under one lock acquisition, so a
// concurrent booking either completes before the cascade or fails after it.
// The returned holders allow Reinstate to restore the reservations if the
// surrounding delete aborts; retired doctors cannot gain new reservations,
// so the snapshot stays accurate until then.
func (l *Ledger) RetireDoctor(doctorID uuid.UUID) map[SlotKey]uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.retired[doctorID] = true
	released := make(map[SlotKey]uuid.UUID)
	for key, holder := range l.reservations {
		if key.DoctorID == doctorID {
			released[key] = holder
			delete(l.reservations, key)
		}
	}
	return released
}

// Retire blocks the entity without touching reservations. Used for patients,
// whose reservations are keyed by doctor and stay held until the cascade
// commits.
func (l *Ledger) Retire(entityID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retired[entityID] = true
}

// Retired reports whether the entity has a cascade delete in flight or
// committed.
func (l *Ledger) Retired(entityID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retired[entityID]
}

// Reinstate undoes a retire after the delete transaction aborts, restoring
// any reservations RetireDoctor released. Restoring cannot conflict: the
// entity was retired for the whole window, so nothing else could claim a
// released slot for them.
func (l *Ledger) Reinstate(entityID uuid.UUID, reservations map[SlotKey]uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.retired, entityID)
	for key, holder := range reservations {
		l.reservations[key] = holder
	}
}

// Seed loads an existing reservation without conflict checks. Used to
// rebuild the ledger from storage at startup.
func (l *Ledger) Seed(key SlotKey, appointmentID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reservations[key] = appointmentID
}
