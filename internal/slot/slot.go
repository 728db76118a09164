// Package slot implements the booking rules for one-hour time slots written
// as "HH:MM - HH:MM".
package slot

import (
	"fmt"
	"strconv"
	"strings"

	"appointment-booking-api/internal/apperr"
	"appointment-booking-api/internal/model"
)

const (
	// FirstStartHour and LastStartHour bound the working day; the last
	// bookable slot ends at 16:00.
	FirstStartHour = 9
	LastStartHour  = 15

	separator = " - "
)

const (
	MsgFormat       = "Time slot must be a valid string of format HH:MM"
	MsgDuration     = "Time slot must be one hour long"
	MsgWorkingHours = "Time slot must be between 09:00 and 15:00"
)

// Slot is a parsed, validated time slot.
type Slot struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int

	start string
}

// Start returns the start clock exactly as it was written.
func (s Slot) Start() string { return s.start }

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d - %02d:%02d", s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
}

// Parse splits and validates a slot. Malformed text, a duration other than
// one whole hour, or a start outside working hours are validation errors.
func Parse(timeSlot string) (Slot, error) {
	parts := strings.Split(timeSlot, separator)
	if len(parts) != 2 {
		return Slot{}, apperr.Validation(MsgFormat)
	}
	sh, sm, err := parseClock(parts[0])
	if err != nil {
		return Slot{}, err
	}
	eh, em, err := parseClock(parts[1])
	if err != nil {
		return Slot{}, err
	}

	if eh-sh != 1 || sm != 0 || em != 0 {
		return Slot{}, apperr.Validation(MsgDuration)
	}
	if sh < FirstStartHour || sh > LastStartHour {
		return Slot{}, apperr.Validation(MsgWorkingHours)
	}
	return Slot{StartHour: sh, StartMinute: sm, EndHour: eh, EndMinute: em, start: parts[0]}, nil
}

func parseClock(clock string) (hour, minute int, err error) {
	hm := strings.Split(clock, ":")
	if len(hm) != 2 {
		return 0, 0, apperr.Validation(MsgFormat)
	}
	hour, err = strconv.Atoi(hm[0])
	if err != nil {
		return 0, 0, apperr.Validationf(err, MsgFormat)
	}
	minute, err = strconv.Atoi(hm[1])
	if err != nil {
		return 0, 0, apperr.Validationf(err, MsgFormat)
	}
	return hour, minute, nil
}

// CheckAvailability reports whether timeSlot is free for the doctor/patient
// pair. It fails, rather than returning false, when the slot itself is invalid.
//
// An existing appointment blocks the slot when it shares the doctor name or
// the patient email and its stored slot text begins with the requested start
// clock. The match is a literal string prefix, not a time comparison, so a
// stored slot is compared only by how its start was written.
func CheckAvailability(doctor model.Doctor, patient model.Patient, timeSlot string, existing []model.Appointment) (bool, error) {
	s, err := Parse(timeSlot)
	if err != nil {
		return false, err
	}
	for _, a := range existing {
		if a.Doctor.Name != doctor.Name && a.Patient.Email != patient.Email {
			continue
		}
		if strings.HasPrefix(a.TimeSlot, s.Start()) {
			return false, nil
		}
	}
	return true, nil
}

// FreeSlots lists the working-hour slots the doctor does not hold yet, in
// order, using the same start-prefix rule as CheckAvailability.
func FreeSlots(doctorName string, existing []model.Appointment) []string {
	out := make([]string, 0, LastStartHour-FirstStartHour+1)
	for h := FirstStartHour; h <= LastStartHour; h++ {
		start := fmt.Sprintf("%02d:00", h)
		taken := false
		for _, a := range existing {
			if a.Doctor.Name == doctorName && strings.HasPrefix(a.TimeSlot, start) {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, start+separator+fmt.Sprintf("%02d:00", h+1))
		}
	}
	return out
}
