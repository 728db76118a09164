package rest

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"appointment-booking-api/internal/apperr"
	"appointment-booking-api/internal/request"
	"appointment-booking-api/internal/service"
)

const (
	MsgFetched      = "Appointments fetched successfully"
	MsgCreated      = "Appointment created successfully"
	MsgDeleted      = "Appointment deleted successfully"
	MsgUpdated      = "Appointment updated successfully"
	MsgSlotsFetched = "Available slots fetched successfully"

	maxBodyBytes   = 1 << 20
	msgInvalidBody = "Invalid request body"
)

type AppointmentHandler struct {
	svc    *service.Service
	logger *zap.Logger
}

func NewAppointmentHandler(svc *service.Service, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, logger: logger}
}

func (h *AppointmentHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	in := request.PatientQuery{PatientEmail: r.URL.Query().Get("patientEmail")}
	if err := request.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, MsgFetched, h.svc.ListByPatient(r.Context(), in.PatientEmail))
}

func (h *AppointmentHandler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	in := request.DoctorQuery{DoctorName: r.URL.Query().Get("doctorName")}
	if err := request.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, MsgFetched, h.svc.ListByDoctor(r.Context(), in.DoctorName))
}

func (h *AppointmentHandler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	in := request.DoctorQuery{DoctorName: r.URL.Query().Get("doctorName")}
	if err := request.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, MsgSlotsFetched, h.svc.FreeSlots(r.Context(), in.DoctorName))
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in request.CreateAppointment
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := request.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	doctor, patient := in.Model()
	apt, err := h.svc.Create(r.Context(), doctor, patient, in.TimeSlot)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, MsgCreated, apt)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := request.DeleteAppointment{PatientEmail: q.Get("patientEmail"), TimeSlot: q.Get("timeSlot")}
	if err := request.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	apt, err := h.svc.Delete(r.Context(), in.PatientEmail, in.TimeSlot)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, MsgDeleted, apt)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := request.UpdateAppointment{
		PatientEmail:     q.Get("patientEmail"),
		OriginalTimeSlot: q.Get("originalTimeSlot"),
		NewTimeSlot:      q.Get("newTimeSlot"),
	}
	if err := request.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	apt, err := h.svc.Update(r.Context(), in.PatientEmail, in.OriginalTimeSlot, in.NewTimeSlot)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, MsgUpdated, apt)
}

// decodeBody reads exactly one JSON value into dst. Trailing data is
// rejected, and a wrongly typed string field of a create request is reported
// by name.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body is too large")
		}
		return apperr.Validationf(err, msgInvalidBody)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		if _, ok := dst.(*request.CreateAppointment); ok {
			if msg := request.CreateTypeMessage(body); msg != "" {
				return apperr.Validationf(err, "%s", msg)
			}
		}
		return apperr.Validationf(err, msgInvalidBody)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.Validationf(err, msgInvalidBody)
	}
	return nil
}
