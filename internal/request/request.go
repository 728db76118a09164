// Package request defines the inbound shapes shared by the REST and gRPC
// adapters and validates them with go-playground/validator.
package request

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"appointment-booking-api/internal/apperr"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/slot"
)

type PatientQuery struct {
	PatientEmail string `json:"patientEmail" validate:"required,email"`
}

type DoctorQuery struct {
	DoctorName string `json:"doctorName" validate:"required"`
}

type Doctor struct {
	Name string `json:"name" validate:"required"`
}

type Patient struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type CreateAppointment struct {
	Doctor   *Doctor  `json:"doctor" validate:"required"`
	Patient  *Patient `json:"patient" validate:"required"`
	TimeSlot string   `json:"timeSlot" validate:"required,timeslot"`
}

func (r CreateAppointment) Model() (model.Doctor, model.Patient) {
	return model.Doctor{Name: r.Doctor.Name},
		model.Patient{FirstName: r.Patient.FirstName, LastName: r.Patient.LastName, Email: r.Patient.Email}
}

type DeleteAppointment struct {
	PatientEmail string `json:"patientEmail" validate:"required,email"`
	TimeSlot     string `json:"timeSlot" validate:"required,timeslot"`
}

type UpdateAppointment struct {
	PatientEmail     string `json:"patientEmail" validate:"required,email"`
	OriginalTimeSlot string `json:"originalTimeSlot" validate:"required,timeslot"`
	NewTimeSlot      string `json:"newTimeSlot" validate:"required,timeslot"`
}

var timeSlotPattern = regexp.MustCompile(`^(0[0-9]|1[0-9]|2[0-3]):([0-5][0-9]) - (0[0-9]|1[0-9]|2[0-3]):([0-5][0-9])$`)

// messages is keyed by "<json path>.<tag>". A key prefixed with the request
// type name wins over the plain path.
var messages = map[string]string{
	"PatientQuery.patientEmail.email": "Invalid email format for patient email",

	"patientEmail.required":      "Patient email is required",
	"patientEmail.email":         "Invalid email format",
	"doctorName.required":        "Doctor name is required",
	"doctor.required":            "Doctor information is required",
	"doctor.name.required":       "Doctor name is required",
	"patient.required":           "Patient information is required",
	"patient.firstName.required": "First name is required",
	"patient.lastName.required":  "Last name is required",
	"patient.email.required":     "Patient email is required",
	"patient.email.email":        "Invalid email format",
	"timeSlot.required":          "Time slot is required",
	"originalTimeSlot.required":  "Original time slot is required",
	"newTimeSlot.required":       "New time slot is required",

	"doctor.name.string":       "Doctor name must be a string",
	"patient.firstName.string": "First name must be a string",
	"patient.lastName.string":  "Last name must be a string",
	"patient.email.string":     "Patient email must be a string",
	"timeSlot.string":          "Time slot must be a valid string of format HH:MM",
}

// createStringFields are the string fields of a CreateAppointment body in the
// order they are validated.
var createStringFields = [][]string{
	{"doctor", "name"},
	{"patient", "firstName"},
	{"patient", "lastName"},
	{"patient", "email"},
	{"timeSlot"},
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("timeslot", validateTimeSlot)
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return timeSlotPattern.MatchString(fl.Field().String())
}

// Validate checks v and reports the first failing rule as a validation
// error carrying a client-facing message.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Internal("validate request", err)
	}
	return apperr.Validation(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	root, path, _ := strings.Cut(fe.Namespace(), ".")
	if msg, ok := messages[root+"."+path+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[path+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Tag() == "timeslot" {
		return slot.MsgFormat
	}
	return path + " is invalid"
}

// CreateTypeMessage names the first string field of a CreateAppointment body
// that holds another JSON type. It returns "" when body is not a JSON object or
// no such field exists.
func CreateTypeMessage(body []byte) string {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return ""
	}
	for _, path := range createStringFields {
		v, ok := lookup(raw, path)
		if !ok || v == nil {
			continue
		}
		if _, isString := v.(string); !isString {
			return messages[strings.Join(path, ".")+".string"]
		}
	}
	return ""
}

func lookup(obj map[string]any, path []string) (any, bool) {
	v, ok := obj[path[0]]
	if !ok || len(path) == 1 {
		return v, ok
	}
	next, isObject := v.(map[string]any)
	if !isObject {
		return nil, false
	}
	return lookup(next, path[1:])
}
