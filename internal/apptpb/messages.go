// Package apptpb holds the wire types of the appointment.v1 gRPC API. The
// messages follow api/appointment/v1/appointment.proto and are encoded with
// protowire directly.
package apptpb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every type carried over the AppointmentService.
type Message interface {
	AppendWire(b []byte) []byte
	UnmarshalWire(b []byte) error
}

type Doctor struct {
	Name string
}

func (m *Doctor) GetName() string {
	if m == nil {
		return ""
	}
	return m.Name
}

func (m *Doctor) AppendWire(b []byte) []byte {
	return appendString(b, 1, m.Name)
}

func (m *Doctor) UnmarshalWire(b []byte) error {
	*m = Doctor{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			m.Name = v
			return n, true
		}
		return 0, false
	})
}

type Patient struct {
	FirstName string
	LastName  string
	Email     string
}

func (m *Patient) GetEmail() string {
	if m == nil {
		return ""
	}
	return m.Email
}

func (m *Patient) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.FirstName)
	b = appendString(b, 2, m.LastName)
	return appendString(b, 3, m.Email)
}

func (m *Patient) UnmarshalWire(b []byte) error {
	*m = Patient{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if typ != protowire.BytesType {
			return 0, false
		}
		switch num {
		case 1:
			return consumeString(b, &m.FirstName), true
		case 2:
			return consumeString(b, &m.LastName), true
		case 3:
			return consumeString(b, &m.Email), true
		}
		return 0, false
	})
}

type Appointment struct {
	Doctor   *Doctor
	Patient  *Patient
	TimeSlot string
}

func (m *Appointment) AppendWire(b []byte) []byte {
	b = appendMessage(b, 1, m.Doctor)
	b = appendMessage(b, 2, m.Patient)
	return appendString(b, 3, m.TimeSlot)
}

func (m *Appointment) UnmarshalWire(b []byte) error {
	*m = Appointment{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if typ != protowire.BytesType {
			return 0, false
		}
		switch num {
		case 1:
			m.Doctor = new(Doctor)
			return consumeMessage(b, m.Doctor), true
		case 2:
			m.Patient = new(Patient)
			return consumeMessage(b, m.Patient), true
		case 3:
			return consumeString(b, &m.TimeSlot), true
		}
		return 0, false
	})
}

type ListByPatientRequest struct {
	PatientEmail string
}

func (m *ListByPatientRequest) AppendWire(b []byte) []byte {
	return appendString(b, 1, m.PatientEmail)
}

func (m *ListByPatientRequest) UnmarshalWire(b []byte) error {
	*m = ListByPatientRequest{}
	return decode(b, stringFields(&m.PatientEmail))
}

type ListByDoctorRequest struct {
	DoctorName string
}

func (m *ListByDoctorRequest) AppendWire(b []byte) []byte {
	return appendString(b, 1, m.DoctorName)
}

func (m *ListByDoctorRequest) UnmarshalWire(b []byte) error {
	*m = ListByDoctorRequest{}
	return decode(b, stringFields(&m.DoctorName))
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment
}

func (m *ListAppointmentsResponse) AppendWire(b []byte) []byte {
	for _, a := range m.Appointments {
		if a == nil {
			a = &Appointment{}
		}
		b = appendMessage(b, 1, a)
	}
	return b
}

func (m *ListAppointmentsResponse) UnmarshalWire(b []byte) error {
	*m = ListAppointmentsResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.BytesType {
			a := new(Appointment)
			n := consumeMessage(b, a)
			m.Appointments = append(m.Appointments, a)
			return n, true
		}
		return 0, false
	})
}

type CreateAppointmentRequest struct {
	Doctor   *Doctor
	Patient  *Patient
	TimeSlot string
}

func (m *CreateAppointmentRequest) GetDoctor() *Doctor {
	if m == nil {
		return nil
	}
	return m.Doctor
}

func (m *CreateAppointmentRequest) GetPatient() *Patient {
	if m == nil {
		return nil
	}
	return m.Patient
}

func (m *CreateAppointmentRequest) AppendWire(b []byte) []byte {
	return (*Appointment)(m).AppendWire(b)
}

func (m *CreateAppointmentRequest) UnmarshalWire(b []byte) error {
	return (*Appointment)(m).UnmarshalWire(b)
}

type AppointmentResponse struct {
	Appointment *Appointment
}

func (m *AppointmentResponse) AppendWire(b []byte) []byte {
	return appendMessage(b, 1, m.Appointment)
}

func (m *AppointmentResponse) UnmarshalWire(b []byte) error {
	*m = AppointmentResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.BytesType {
			m.Appointment = new(Appointment)
			return consumeMessage(b, m.Appointment), true
		}
		return 0, false
	})
}

type DeleteAppointmentRequest struct {
	PatientEmail string
	TimeSlot     string
}

func (m *DeleteAppointmentRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.PatientEmail)
	return appendString(b, 2, m.TimeSlot)
}

func (m *DeleteAppointmentRequest) UnmarshalWire(b []byte) error {
	*m = DeleteAppointmentRequest{}
	return decode(b, stringFields(&m.PatientEmail, &m.TimeSlot))
}

type UpdateAppointmentRequest struct {
	PatientEmail     string
	OriginalTimeSlot string
	NewTimeSlot      string
}

func (m *UpdateAppointmentRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.PatientEmail)
	b = appendString(b, 2, m.OriginalTimeSlot)
	return appendString(b, 3, m.NewTimeSlot)
}

func (m *UpdateAppointmentRequest) UnmarshalWire(b []byte) error {
	*m = UpdateAppointmentRequest{}
	return decode(b, stringFields(&m.PatientEmail, &m.OriginalTimeSlot, &m.NewTimeSlot))
}

type ListFreeSlotsRequest struct {
	DoctorName string
}

func (m *ListFreeSlotsRequest) AppendWire(b []byte) []byte {
	return appendString(b, 1, m.DoctorName)
}

func (m *ListFreeSlotsRequest) UnmarshalWire(b []byte) error {
	*m = ListFreeSlotsRequest{}
	return decode(b, stringFields(&m.DoctorName))
}

type ListFreeSlotsResponse struct {
	TimeSlots []string
}

func (m *ListFreeSlotsResponse) AppendWire(b []byte) []byte {
	for _, s := range m.TimeSlots {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	return b
}

func (m *ListFreeSlotsResponse) UnmarshalWire(b []byte) error {
	*m = ListFreeSlotsResponse{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			if n >= 0 {
				m.TimeSlots = append(m.TimeSlots, v)
			}
			return n, true
		}
		return 0, false
	})
}

// decode walks the fields of b. field reports how many bytes it consumed
// and false for fields it does not know, which are skipped.
func decode(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) (int, bool)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, ok := field(num, typ, b)
		if !ok {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

// stringFields decodes a message made only of string fields numbered from 1.
func stringFields(dst ...*string) func(protowire.Number, protowire.Type, []byte) (int, bool) {
	return func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if typ != protowire.BytesType || num < 1 || int(num) > len(dst) {
			return 0, false
		}
		return consumeString(b, dst[num-1]), true
	}
}

func consumeString(b []byte, dst *string) int {
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n
}

func consumeMessage(b []byte, m Message) int {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	if err := m.UnmarshalWire(v); err != nil {
		return -1
	}
	return n
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendMessage[M interface {
	*T
	Message
}, T any](b []byte, num protowire.Number, m M) []byte {
	if m == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.AppendWire(nil))
}
