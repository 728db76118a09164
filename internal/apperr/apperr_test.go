package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestKindMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		http   int
		code   codes.Code
		client string
	}{
		{"validation", Validation("Time slot must be one hour long"), KindValidation, http.StatusBadRequest, codes.InvalidArgument, "Time slot must be one hour long"},
		{"not found", NotFound("Appointment does not exist"), KindNotFound, http.StatusBadRequest, codes.NotFound, "Appointment does not exist"},
		{"conflict", Conflict("Time slot not available"), KindConflict, http.StatusConflict, codes.AlreadyExists, "Time slot not available"},
		{"internal", Internal("boom", errors.New("disk")), KindInternal, http.StatusInternalServerError, codes.Internal, "Something went wrong"},
		{"plain error", errors.New("plain"), KindInternal, http.StatusInternalServerError, codes.Internal, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.http, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, GRPCCode(tt.err))
			assert.Equal(t, tt.client, Message(tt.err))

			s, ok := status.FromError(GRPCStatus(tt.err))
			assert.True(t, ok)
			assert.Equal(t, tt.code, s.Code())
			assert.Equal(t, tt.client, s.Message())
		})
	}
}

func TestWrappedErrorsKeepKind(t *testing.T) {
	err := fmt.Errorf("create: %w", Conflict("Time slot not available"))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "VALIDATION: bad", Validation("bad").Error())

	inner := errors.New("strconv")
	e := Validationf(inner, "Invalid time %q", "ab")
	assert.Equal(t, `VALIDATION: Invalid time "ab": strconv`, e.Error())
	assert.ErrorIs(t, e, inner)
	assert.Nil(t, GRPCStatus(nil))
}
