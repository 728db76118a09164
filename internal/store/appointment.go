package store

import "appointment-booking-api/internal/model"

// Tx is exclusive access to a Store for the duration of Store.Tx.
type Tx struct {
	s *Store
}

// Appointments exposes the live collection. Callers must not modify it or
// keep it after the transaction ends.
func (tx *Tx) Appointments() []model.Appointment {
	return tx.s.appointments
}

func (tx *Tx) Filter(keep func(model.Appointment) bool) []model.Appointment {
	return filter(tx.s.appointments, keep)
}

// Find returns the index of the first appointment booked by email at exactly
// timeSlot.
func (tx *Tx) Find(email, timeSlot string) (int, bool) {
	for i, a := range tx.s.appointments {
		if a.Patient.Email == email && a.TimeSlot == timeSlot {
			return i, true
		}
	}
	return -1, false
}

func (tx *Tx) Append(a model.Appointment) {
	tx.s.appointments = append(tx.s.appointments, a)
}

// RemoveAt deletes the appointment at i, keeping the order of the rest, and
// returns it.
func (tx *Tx) RemoveAt(i int) model.Appointment {
	a := tx.s.appointments[i]
	tx.s.appointments = append(tx.s.appointments[:i], tx.s.appointments[i+1:]...)
	return a
}

// SetTimeSlot moves the appointment at i and returns the updated record.
func (tx *Tx) SetTimeSlot(i int, timeSlot string) model.Appointment {
	tx.s.appointments[i].TimeSlot = timeSlot
	return tx.s.appointments[i]
}
