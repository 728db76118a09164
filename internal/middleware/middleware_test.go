package middleware

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	pb "appointment-booking-api/internal/apptpb"
	"appointment-booking-api/internal/logger"
)

func ok(ctx context.Context, req any) (any, error) { return "ok", nil }

func peerCtx(addr string) context.Context {
	tcp, _ := net.ResolveTCPAddr("tcp", addr)
	return peer.NewContext(context.Background(), &peer.Peer{Addr: tcp})
}

func TestRateLimitOnlyMutatingMethods(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 0.001, 2)
	intercept := RateLimit(rl)

	create := &grpc.UnaryServerInfo{FullMethod: pb.CreateAppointmentFullMethodName}
	list := &grpc.UnaryServerInfo{FullMethod: pb.ListByPatientFullMethodName}
	c := peerCtx("10.0.0.1:5000")

	for i := 0; i < 2; i++ {
		_, err := intercept(c, nil, create, ok)
		require.NoError(t, err)
	}
	_, err := intercept(c, nil, create, ok)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	for i := 0; i < 5; i++ {
		_, err := intercept(c, nil, list, ok)
		assert.NoError(t, err)
	}
}

func TestRateLimitKeysByHost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	intercept := RateLimit(NewRateLimiter(ctx, 0.001, 1))
	info := &grpc.UnaryServerInfo{FullMethod: pb.DeleteAppointmentFullMethodName}

	_, err := intercept(peerCtx("10.0.0.1:5000"), nil, info, ok)
	require.NoError(t, err)

	_, err = intercept(peerCtx("10.0.0.1:5001"), nil, info, ok)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err), "new port, same host")

	_, err = intercept(peerCtx("10.0.0.2:5000"), nil, info, ok)
	assert.NoError(t, err)
}

func TestClientKeyForwardedFor(t *testing.T) {
	fwd := metadata.Pairs(ForwardedForKey, "203.0.113.7, 198.51.100.2")

	ctx := metadata.NewIncomingContext(peerCtx("127.0.0.1:9000"), fwd)
	assert.Equal(t, "198.51.100.2", clientKey(ctx), "right-most hop from a loopback peer")

	ctx = metadata.NewIncomingContext(peerCtx("192.0.2.10:9000"), fwd)
	assert.Equal(t, "192.0.2.10", clientKey(ctx), "remote peers cannot choose their key")

	assert.Equal(t, "127.0.0.1", clientKey(peerCtx("127.0.0.1:9000")))
	assert.Equal(t, "unknown", clientKey(context.Background()))
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	intercept := RateLimit(NewRateLimiter(ctx, 0.001, 1))
	info := &grpc.UnaryServerInfo{FullMethod: pb.CreateAppointmentFullMethodName}

	var allowed int
	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		md := metadata.Pairs(ForwardedForKey, ip)
		if _, err := intercept(metadata.NewIncomingContext(peerCtx("192.0.2.10:5000"), md), nil, info, ok); err == nil {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestSweepDropsIdleClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(4 * time.Minute)
	rl.Allow("b")
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
}

func TestRequestIDFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDKey, "req-123"))
	var got string
	_, err := RequestID()(ctx, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "req-123", got)
}

func TestRequestIDGenerated(t *testing.T) {
	var got string
	_, err := RequestID()(context.Background(), nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 36)
}

func TestClientRequestIDForwards(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")
	var md metadata.MD
	err := ClientRequestID()(ctx, "/x", nil, nil, nil, func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ = metadata.FromOutgoingContext(ctx)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"req-9"}, md.Get(RequestIDKey))
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	intercept := Logging(zap.New(core))
	ctx := WithRequestID(context.Background(), "req-1")
	info := &grpc.UnaryServerInfo{FullMethod: pb.CreateAppointmentFullMethodName}

	_, err := intercept(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
		logger.FromContext(ctx, zap.NewNop()).Info("inside")
		return nil, status.Error(codes.AlreadyExists, "Time slot not available")
	})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "inside", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	last := entries[1]
	assert.Equal(t, zap.WarnLevel, last.Level)
	assert.Equal(t, "AlreadyExists", last.ContextMap()["grpc_code"])
	assert.Equal(t, pb.CreateAppointmentFullMethodName, last.ContextMap()["grpc_method"])

	_, err = intercept(ctx, nil, info, func(context.Context, any) (any, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	assert.Equal(t, zap.ErrorLevel, logs.All()[2].Level)
}
