package handler

import (
	pb "appointment-booking-api/internal/apptpb"
	"appointment-booking-api/internal/service"
)

type Handler struct {
	pb.UnimplementedAppointmentServiceServer
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}
