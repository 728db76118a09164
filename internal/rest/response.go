package rest

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"appointment-booking-api/internal/apperr"
	"appointment-booking-api/internal/logger"
)

type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, successResponse{Message: message, Data: data})
}

// writeError renders err with the status of its kind. Internal errors are
// logged and never shown to the client.
func writeError(w http.ResponseWriter, r *http.Request, base *zap.Logger, err error) {
	code := apperr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), base).Error("request failed", zap.Error(err))
	}
	writeJSON(w, code, errorResponse{Message: apperr.Message(err)})
}
