package grpcweb

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	pb "appointment-booking-api/internal/apptpb"
	"appointment-booking-api/internal/handler"
	"appointment-booking-api/internal/middleware"
	"appointment-booking-api/internal/service"
	"appointment-booking-api/internal/store"
)

func setup(t *testing.T, interceptors ...grpc.UnaryServerInterceptor) *Bridge {
	t.Helper()
	svc := service.New(store.New(store.Seed()...), nil, zap.NewNop())

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(pb.Codec{}),
		grpc.ChainUnaryInterceptor(append([]grpc.UnaryServerInterceptor{middleware.RequestID()}, interceptors...)...),
	)
	pb.RegisterAppointmentServiceServer(srv, handler.New(svc))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	b, err := New("passthrough:///bufnet", zap.NewNop(), grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

type frameOut struct {
	flag byte
	data []byte
}

func readFrames(t *testing.T, b []byte) []frameOut {
	t.Helper()
	var out []frameOut
	for len(b) > 0 {
		require.GreaterOrEqual(t, len(b), 5)
		n := int(binary.BigEndian.Uint32(b[1:5]))
		require.GreaterOrEqual(t, len(b), 5+n)
		out = append(out, frameOut{flag: b[0], data: b[5 : 5+n]})
		b = b[5+n:]
	}
	return out
}

func call(t *testing.T, b *Bridge, method string, msg pb.Message, contentType string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	body := frame(0x00, msg.AppendWire(nil))
	if contentType == "application/grpc-web-text" {
		body = []byte(base64.StdEncoding.EncodeToString(body))
	}
	req := httptest.NewRequest(http.MethodPost, method, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, req)
	return rec
}

func TestForwardSuccess(t *testing.T) {
	b := setup(t)

	rec := call(t, b, pb.ListByPatientFullMethodName, &pb.ListByPatientRequest{PatientEmail: "michael.brown@example.com"}, "application/grpc-web+proto")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/grpc-web+proto", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	frames := readFrames(t, rec.Body.Bytes())
	require.Len(t, frames, 2)
	assert.Equal(t, byte(0x00), frames[0].flag)
	assert.Equal(t, byte(0x80), frames[1].flag)
	assert.Equal(t, "grpc-status:0\r\n", string(frames[1].data))

	resp := new(pb.ListAppointmentsResponse)
	require.NoError(t, resp.UnmarshalWire(frames[0].data))
	assert.Len(t, resp.Appointments, 2)
}

func TestForwardTextMode(t *testing.T) {
	b := setup(t)

	rec := call(t, b, pb.ListFreeSlotsFullMethodName, &pb.ListFreeSlotsRequest{DoctorName: "Dr. Clara Williams"}, "application/grpc-web-text")
	assert.Equal(t, "application/grpc-web-text+proto", rec.Header().Get("Content-Type"))

	raw, err := base64.StdEncoding.DecodeString(rec.Body.String())
	require.NoError(t, err)
	frames := readFrames(t, raw)
	require.Len(t, frames, 2)

	resp := new(pb.ListFreeSlotsResponse)
	require.NoError(t, resp.UnmarshalWire(frames[0].data))
	assert.NotContains(t, resp.TimeSlots, "10:00 - 11:00")
}

func TestForwardStatusError(t *testing.T) {
	b := setup(t)

	rec := call(t, b, pb.DeleteAppointmentFullMethodName, &pb.DeleteAppointmentRequest{PatientEmail: "nobody@example.com", TimeSlot: "10:00 - 11:00"}, "application/grpc-web+proto")
	frames := readFrames(t, rec.Body.Bytes())
	require.Len(t, frames, 1)
	assert.Equal(t, byte(0x80), frames[0].flag)
	assert.Equal(t, "grpc-status:5\r\ngrpc-message:Appointment does not exist\r\n", string(frames[0].data))
}

func TestRejectsBadRequests(t *testing.T) {
	b := setup(t)

	tests := []struct {
		name   string
		method string
		ct     string
		body   []byte
		code   int
		trail  string
	}{
		{"preflight", http.MethodOptions, "", nil, http.StatusOK, ""},
		{"wrong method", http.MethodGet, "application/grpc-web", nil, http.StatusMethodNotAllowed, ""},
		{"wrong content type", http.MethodPost, "application/json", nil, http.StatusUnsupportedMediaType, ""},
		{"short body", http.MethodPost, "application/grpc-web", []byte{0, 0}, http.StatusOK, "grpc-status:3\r\ngrpc-message:body too short\r\n"},
		{"incomplete frame", http.MethodPost, "application/grpc-web", []byte{0, 0, 0, 0, 9, 1}, http.StatusOK, "grpc-status:3\r\ngrpc-message:incomplete frame\r\n"},
		{"compressed frame", http.MethodPost, "application/grpc-web", []byte{1, 0, 0, 0, 0}, http.StatusOK, "grpc-status:12\r\ngrpc-message:compressed frames are not supported\r\n"},
		{"trailer frame", http.MethodPost, "application/grpc-web", []byte{0x80, 0, 0, 0, 0}, http.StatusOK, "grpc-status:3\r\ngrpc-message:unexpected frame flag\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, pb.ListByDoctorFullMethodName, bytes.NewReader(tt.body))
			if tt.ct != "" {
				req.Header.Set("Content-Type", tt.ct)
			}
			req.Header.Set("Origin", "http://localhost:3000")
			rec := httptest.NewRecorder()
			b.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.trail != "" {
				frames := readFrames(t, rec.Body.Bytes())
				require.Len(t, frames, 1)
				assert.Equal(t, tt.trail, string(frames[0].data))
			}
		})
	}
}

func TestRateLimitIgnoresForwardedForHeader(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	b := setup(t, middleware.RateLimit(middleware.NewRateLimiter(ctx, 0.001, 1)))

	var trailers []string
	for i, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := &pb.CreateAppointmentRequest{
			Doctor:   &pb.Doctor{Name: "Dr. Test"},
			Patient:  &pb.Patient{FirstName: "Test", LastName: "Patient", Email: fmt.Sprintf("p%d@example.com", i)},
			TimeSlot: fmt.Sprintf("%02d:00 - %02d:00", 11+i, 12+i),
		}
		rec := call(t, b, pb.CreateAppointmentFullMethodName, req, "application/grpc-web+proto", "X-Forwarded-For", ip)
		frames := readFrames(t, rec.Body.Bytes())
		trailers = append(trailers, string(frames[len(frames)-1].data))
	}

	assert.Equal(t, "grpc-status:0\r\n", trailers[0])
	assert.Equal(t, "grpc-status:8\r\ngrpc-message:too many requests\r\n", trailers[1])
	assert.Equal(t, "grpc-status:8\r\ngrpc-message:too many requests\r\n", trailers[2])
}
