package grpcweb

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"appointment-booking-api/internal/middleware"
)

const maxBody = 4 << 20

// Bridge translates gRPC-Web (browser HTTP/1.1) → native gRPC.
type Bridge struct {
	conn   grpc.ClientConnInterface
	close  func() error
	logger *zap.Logger
}

// New dials the gRPC server at addr (e.g. "localhost:50051").
func New(addr string, logger *zap.Logger, opts ...grpc.DialOption) (*Bridge, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(middleware.ClientRequestID()),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcweb dial: %w", err)
	}
	return &Bridge{conn: conn, close: conn.Close, logger: logger}, nil
}

func (b *Bridge) Close() error { return b.close() }

// Handler returns an http.Handler that translates gRPC-Web → gRPC.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, X-Grpc-Web, X-User-Agent, X-Request-Id, x-grpc-web")
		w.Header().Set("Access-Control-Expose-Headers",
			"Grpc-Status, Grpc-Message, X-Request-Id, grpc-status, grpc-message")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "application/grpc-web") {
			http.Error(w, "not grpc-web", http.StatusUnsupportedMediaType)
			return
		}

		b.forward(w, r, strings.HasPrefix(ct, "application/grpc-web-text"))
	})
}

func (b *Bridge) forward(w http.ResponseWriter, r *http.Request, text bool) {
	reqID := r.Header.Get("X-Request-Id")
	if reqID == "" {
		reqID = middleware.NewRequestID()
	}
	w.Header().Set("X-Request-Id", reqID)
	log := b.logger.With(zap.String("request_id", reqID), zap.String("grpc_method", r.URL.Path))
	out := frameWriter{w: w, text: text}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		out.error(codes.Internal, "read body failed")
		return
	}
	if text {
		body, err = base64.StdEncoding.DecodeString(string(body))
		if err != nil {
			out.error(codes.InvalidArgument, "bad base64 body")
			return
		}
	}
	if len(body) < 5 {
		out.error(codes.InvalidArgument, "body too short")
		return
	}

	// grpc-web frame: 1-byte flag + 4-byte big-endian length + protobuf
	msgLen := binary.BigEndian.Uint32(body[1:5])
	if int(msgLen)+5 > len(body) {
		out.error(codes.InvalidArgument, "incomplete frame")
		return
	}
	switch flag := body[0]; {
	case flag&0x01 != 0:
		out.error(codes.Unimplemented, "compressed frames are not supported")
		return
	case flag != 0x00:
		out.error(codes.InvalidArgument, "unexpected frame flag")
		return
	}
	payload := body[5 : 5+msgLen]

	md := metadata.Pairs(middleware.ForwardedForKey, clientIP(r))
	ctx := metadata.NewOutgoingContext(middleware.WithRequestID(r.Context(), reqID), md)

	// invoke gRPC method using raw codec (pass-through bytes)
	resp := &rawMsg{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawMsg{data: payload}, resp, grpc.ForceCodec(rawCodec{}))
	if err != nil {
		st := status.Convert(err)
		log.Info("grpc-web call failed", zap.String("grpc_code", st.Code().String()), zap.String("grpc_message", st.Message()))
		out.error(st.Code(), st.Message())
		return
	}

	log.Debug("grpc-web call")
	out.success(resp.data)
}

// clientIP is the connecting peer's host. A client-supplied X-Forwarded-For
// is ignored so it cannot pick its own rate-limit bucket.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// rawMsg wraps raw protobuf bytes.
type rawMsg struct{ data []byte }

// rawCodec passes bytes through without marshal/unmarshal.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	return v.(*rawMsg).data, nil
}
func (rawCodec) Unmarshal(data []byte, v any) error {
	m := v.(*rawMsg)
	m.data = append([]byte(nil), data...)
	return nil
}
func (rawCodec) Name() string { return "raw" }

type frameWriter struct {
	w    http.ResponseWriter
	text bool
}

func (f frameWriter) start() {
	ct := "application/grpc-web+proto"
	if f.text {
		ct = "application/grpc-web-text+proto"
	}
	f.w.Header().Set("Content-Type", ct)
	f.w.WriteHeader(http.StatusOK)
}

func (f frameWriter) error(code codes.Code, msg string) {
	f.start()
	f.write(trailerFrame(code, msg))
}

func (f frameWriter) success(data []byte) {
	f.start()
	f.write(append(frame(0x00, data), trailerFrame(codes.OK, "")...))
}

func (f frameWriter) write(b []byte) {
	if f.text {
		b = []byte(base64.StdEncoding.EncodeToString(b))
	}
	f.w.Write(b)
}

func frame(flag byte, data []byte) []byte {
	out := make([]byte, 5+len(data))
	out[0] = flag
	binary.BigEndian.PutUint32(out[1:5], uint32(len(data)))
	copy(out[5:], data)
	return out
}

func trailerFrame(code codes.Code, msg string) []byte {
	trailer := fmt.Sprintf("grpc-status:%d\r\n", code)
	if msg != "" {
		trailer += fmt.Sprintf("grpc-message:%s\r\n", msg)
	}
	return frame(0x80, []byte(trailer))
}
