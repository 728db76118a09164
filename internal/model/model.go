package model

type Doctor struct {
	Name string `json:"name"`
}

type Patient struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Appointment has no surrogate id; it is addressed by (Patient.Email, TimeSlot).
type Appointment struct {
	Doctor   Doctor  `json:"doctor"`
	Patient  Patient `json:"patient"`
	TimeSlot string  `json:"timeSlot"`
}
