package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"appointment-booking-api/internal/logger"
	"appointment-booking-api/internal/telemetry"
)

// Logging puts a request-scoped logger in the context and logs one line per
// call. It must run after RequestID.
func Logging(base *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		l := base.With(
			zap.String("request_id", RequestIDFromContext(ctx)),
			zap.String("grpc_method", info.FullMethod),
		)
		if traceID := telemetry.TraceID(ctx); traceID != "" {
			l = l.With(zap.String("trace_id", traceID))
		}

		resp, err := next(logger.WithContext(ctx, l), req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("grpc_code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		switch code {
		case codes.OK:
			l.Info("grpc request", fields...)
		case codes.Internal, codes.Unknown:
			l.Error("grpc request", append(fields, zap.Error(err))...)
		default:
			l.Warn("grpc request", append(fields, zap.String("grpc_message", status.Convert(err).Message()))...)
		}
		return resp, err
	}
}
