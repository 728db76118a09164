// Package service implements the appointment use cases on top of the store
// and the slot rules.
package service

import (
	"context"

	"go.uber.org/zap"

	"appointment-booking-api/internal/apperr"
	"appointment-booking-api/internal/events"
	"appointment-booking-api/internal/logger"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/slot"
	"appointment-booking-api/internal/store"
)

const (
	MsgNotAvailable = "Time slot not available"
	MsgNotFound     = "Appointment does not exist"
)

type Service struct {
	store  *store.Store
	events events.Sink
	logger *zap.Logger
}

func New(st *store.Store, sink events.Sink, log *zap.Logger) *Service {
	if sink == nil {
		sink = events.Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, events: sink, logger: log}
}

// ListByPatient returns the patient's appointments in store order.
func (s *Service) ListByPatient(ctx context.Context, email string) []model.Appointment {
	out := s.store.Filter(func(a model.Appointment) bool { return a.Patient.Email == email })
	s.log(ctx).Debug("list by patient", zap.String("patient_email", email), zap.Int("count", len(out)))
	return out
}

// ListByDoctor returns the doctor's appointments in store order.
func (s *Service) ListByDoctor(ctx context.Context, name string) []model.Appointment {
	out := s.store.Filter(func(a model.Appointment) bool { return a.Doctor.Name == name })
	s.log(ctx).Debug("list by doctor", zap.String("doctor", name), zap.Int("count", len(out)))
	return out
}

// FreeSlots lists the working-hour slots the doctor can still take.
func (s *Service) FreeSlots(ctx context.Context, doctorName string) []string {
	out := slot.FreeSlots(doctorName, s.store.Snapshot())
	s.log(ctx).Debug("free slots", zap.String("doctor", doctorName), zap.Int("count", len(out)))
	return out
}

func (s *Service) Create(ctx context.Context, doctor model.Doctor, patient model.Patient, timeSlot string) (model.Appointment, error) {
	a := model.Appointment{Doctor: doctor, Patient: patient, TimeSlot: timeSlot}

	err := s.store.Tx(func(tx *store.Tx) error {
		ok, err := slot.CheckAvailability(doctor, patient, timeSlot, tx.Appointments())
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict(MsgNotAvailable)
		}
		tx.Append(a)
		return nil
	})
	if err != nil {
		s.rejected(ctx, "create", err, a)
		return model.Appointment{}, err
	}

	s.events.Enqueue(events.New(events.TypeBooked, a))
	s.log(ctx).Info("appointment created", fields(a)...)
	return a, nil
}

func (s *Service) Delete(ctx context.Context, email, timeSlot string) (model.Appointment, error) {
	var removed model.Appointment
	err := s.store.Tx(func(tx *store.Tx) error {
		i, ok := tx.Find(email, timeSlot)
		if !ok {
			return apperr.NotFound(MsgNotFound)
		}
		removed = tx.RemoveAt(i)
		return nil
	})
	if err != nil {
		s.rejected(ctx, "delete", err, model.Appointment{Patient: model.Patient{Email: email}, TimeSlot: timeSlot})
		return model.Appointment{}, err
	}

	s.events.Enqueue(events.New(events.TypeCancelled, removed))
	s.log(ctx).Info("appointment deleted", fields(removed)...)
	return removed, nil
}

// Update moves an appointment to newTimeSlot. The appointment still counts
// against the availability check, so a move to its own start hour conflicts.
func (s *Service) Update(ctx context.Context, email, originalTimeSlot, newTimeSlot string) (model.Appointment, error) {
	var updated model.Appointment
	err := s.store.Tx(func(tx *store.Tx) error {
		i, ok := tx.Find(email, originalTimeSlot)
		if !ok {
			return apperr.NotFound(MsgNotFound)
		}
		current := tx.Appointments()[i]
		ok, err := slot.CheckAvailability(current.Doctor, current.Patient, newTimeSlot, tx.Appointments())
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict(MsgNotAvailable)
		}
		updated = tx.SetTimeSlot(i, newTimeSlot)
		return nil
	})
	if err != nil {
		s.rejected(ctx, "update", err, model.Appointment{Patient: model.Patient{Email: email}, TimeSlot: newTimeSlot})
		return model.Appointment{}, err
	}

	e := events.New(events.TypeRescheduled, updated)
	e.PreviousTimeSlot = originalTimeSlot
	s.events.Enqueue(e)
	s.log(ctx).Info("appointment updated", append(fields(updated), zap.String("previous_time_slot", originalTimeSlot))...)
	return updated, nil
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.logger)
}

func (s *Service) rejected(ctx context.Context, op string, err error, a model.Appointment) {
	s.log(ctx).Info("appointment "+op+" rejected",
		append(fields(a), zap.String("kind", string(apperr.KindOf(err))), zap.Error(err))...)
}

func fields(a model.Appointment) []zap.Field {
	return []zap.Field{
		zap.String("doctor", a.Doctor.Name),
		zap.String("patient_email", a.Patient.Email),
		zap.String("time_slot", a.TimeSlot),
	}
}
