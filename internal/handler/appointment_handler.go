package handler

import (
	"context"

	"appointment-booking-api/internal/apperr"
	pb "appointment-booking-api/internal/apptpb"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/request"
)

func (h *Handler) ListByPatient(ctx context.Context, req *pb.ListByPatientRequest) (*pb.ListAppointmentsResponse, error) {
	if err := request.Validate(request.PatientQuery{PatientEmail: req.PatientEmail}); err != nil {
		return nil, apperr.GRPCStatus(err)
	}
	return listResponse(h.svc.ListByPatient(ctx, req.PatientEmail)), nil
}

func (h *Handler) ListByDoctor(ctx context.Context, req *pb.ListByDoctorRequest) (*pb.ListAppointmentsResponse, error) {
	if err := request.Validate(request.DoctorQuery{DoctorName: req.DoctorName}); err != nil {
		return nil, apperr.GRPCStatus(err)
	}
	return listResponse(h.svc.ListByDoctor(ctx, req.DoctorName)), nil
}

func (h *Handler) ListFreeSlots(ctx context.Context, req *pb.ListFreeSlotsRequest) (*pb.ListFreeSlotsResponse, error) {
	if err := request.Validate(request.DoctorQuery{DoctorName: req.DoctorName}); err != nil {
		return nil, apperr.GRPCStatus(err)
	}
	return &pb.ListFreeSlotsResponse{TimeSlots: h.svc.FreeSlots(ctx, req.DoctorName)}, nil
}

func (h *Handler) CreateAppointment(ctx context.Context, req *pb.CreateAppointmentRequest) (*pb.AppointmentResponse, error) {
	in := request.CreateAppointment{TimeSlot: req.TimeSlot}
	if d := req.GetDoctor(); d != nil {
		in.Doctor = &request.Doctor{Name: d.Name}
	}
	if p := req.GetPatient(); p != nil {
		in.Patient = &request.Patient{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
	}
	if err := request.Validate(in); err != nil {
		return nil, apperr.GRPCStatus(err)
	}

	doctor, patient := in.Model()
	apt, err := h.svc.Create(ctx, doctor, patient, in.TimeSlot)
	if err != nil {
		return nil, apperr.GRPCStatus(err)
	}
	return &pb.AppointmentResponse{Appointment: toProto(apt)}, nil
}

func (h *Handler) DeleteAppointment(ctx context.Context, req *pb.DeleteAppointmentRequest) (*pb.AppointmentResponse, error) {
	in := request.DeleteAppointment{PatientEmail: req.PatientEmail, TimeSlot: req.TimeSlot}
	if err := request.Validate(in); err != nil {
		return nil, apperr.GRPCStatus(err)
	}

	apt, err := h.svc.Delete(ctx, in.PatientEmail, in.TimeSlot)
	if err != nil {
		return nil, apperr.GRPCStatus(err)
	}
	return &pb.AppointmentResponse{Appointment: toProto(apt)}, nil
}

func (h *Handler) UpdateAppointment(ctx context.Context, req *pb.UpdateAppointmentRequest) (*pb.AppointmentResponse, error) {
	in := request.UpdateAppointment{
		PatientEmail:     req.PatientEmail,
		OriginalTimeSlot: req.OriginalTimeSlot,
		NewTimeSlot:      req.NewTimeSlot,
	}
	if err := request.Validate(in); err != nil {
		return nil, apperr.GRPCStatus(err)
	}

	apt, err := h.svc.Update(ctx, in.PatientEmail, in.OriginalTimeSlot, in.NewTimeSlot)
	if err != nil {
		return nil, apperr.GRPCStatus(err)
	}
	return &pb.AppointmentResponse{Appointment: toProto(apt)}, nil
}

func listResponse(apts []model.Appointment) *pb.ListAppointmentsResponse {
	out := make([]*pb.Appointment, len(apts))
	for i := range apts {
		out[i] = toProto(apts[i])
	}
	return &pb.ListAppointmentsResponse{Appointments: out}
}

func toProto(a model.Appointment) *pb.Appointment {
	return &pb.Appointment{
		Doctor: &pb.Doctor{Name: a.Doctor.Name},
		Patient: &pb.Patient{
			FirstName: a.Patient.FirstName,
			LastName:  a.Patient.LastName,
			Email:     a.Patient.Email,
		},
		TimeSlot: a.TimeSlot,
	}
}
