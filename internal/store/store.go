// Package store keeps appointments in memory, in insertion order.
package store

import (
	"sync"

	"appointment-booking-api/internal/model"
)

// Store is an ordered appointment collection. It is safe for concurrent use;
// read-modify-write sequences must run inside Tx.
type Store struct {
	mu           sync.Mutex
	appointments []model.Appointment
}

// New returns a store holding a copy of seed.
func New(seed ...model.Appointment) *Store {
	s := &Store{appointments: make([]model.Appointment, 0, len(seed))}
	s.appointments = append(s.appointments, seed...)
	return s
}

// Seed returns the appointments the service starts with.
func Seed() []model.Appointment {
	michael := model.Patient{FirstName: "Michael", LastName: "Brown", Email: "michael.brown@example.com"}
	return []model.Appointment{
		{Doctor: model.Doctor{Name: "Dr. Clara Williams"}, Patient: michael, TimeSlot: "10:00 - 11:00"},
		{Doctor: model.Doctor{Name: "Dr. Alice Smith"}, Patient: michael, TimeSlot: "14:00 - 15:00"},
	}
}

// Tx runs fn while holding the store lock. fn must not call other Store
// methods. Changes made before fn returns an error are kept.
func (s *Store) Tx(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s})
}

// Snapshot returns a copy of every stored appointment.
func (s *Store) Snapshot() []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// Filter returns copies of the appointments keep accepts, in store order.
// The result is never nil.
func (s *Store) Filter(keep func(model.Appointment) bool) []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.appointments, keep)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appointments)
}

func filter(in []model.Appointment, keep func(model.Appointment) bool) []model.Appointment {
	out := []model.Appointment{}
	for _, a := range in {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
