package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "appointment-booking-api/internal/apptpb"
	"appointment-booking-api/internal/config"
	"appointment-booking-api/internal/events"
	gweb "appointment-booking-api/internal/grpcweb"
	"appointment-booking-api/internal/handler"
	"appointment-booking-api/internal/logger"
	"appointment-booking-api/internal/middleware"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/rest"
	"appointment-booking-api/internal/service"
	"appointment-booking-api/internal/store"
	"appointment-booking-api/internal/telemetry"
)

func main() {
	_ = godotenv.Load()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := telemetry.Setup(ctx, cfg.OTEL)
	if err != nil {
		log.Error("otel setup failed", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var seed []model.Appointment
	if cfg.SeedData {
		seed = store.Seed()
	}
	st := store.New(seed...)

	outbox := events.NewOutbox(cfg.Kafka.OutboxCapacity)
	publisher := events.NewPublisher(outbox, log.Named("events"), events.PublisherConfig{
		Brokers:      cfg.Kafka.Brokers,
		PollEvery:    cfg.Kafka.PollInterval,
		DrainTimeout: cfg.Server.ShutdownTimeout,
	})
	// the publisher outlives the servers so events from in-flight requests are flushed
	stopPublisher := background(publisher.Run)

	svc := service.New(st, outbox, log)

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
	}

	// grpc server
	srv := newGRPCServer(ctx, cfg.RateLimit, log, svc)
	grpcPort := strconv.Itoa(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", ":"+grpcPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		log.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
			stop()
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:"+grpcPort, log.Named("grpcweb"))
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	defer bridge.Close()

	webSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.WebPort),
		Handler:           bridge.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	restSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.HTTPPort),
		Handler:           rest.NewRouter(svc, restOptions(cfg, log, rdb)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	for name, hs := range map[string]*http.Server{"grpc-web": webSrv, "rest": restSrv} {
		go func() {
			log.Info(name+" listening", zap.String("addr", hs.Addr))
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(name+" serve", zap.Error(err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = restSrv.Shutdown(shutdownCtx)
	_ = webSrv.Shutdown(shutdownCtx)

	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		srv.Stop()
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelDrain()
	if err := stopPublisher(drainCtx); err != nil {
		log.Warn("event publisher did not stop in time", zap.Int("pending", outbox.Len()))
	}
	return nil
}

// background runs fn until the returned stop func is called, then waits for
// fn to return or for ctx to expire.
func background(fn func(context.Context)) func(ctx context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(ctx)
	}()
	return func(wait context.Context) error {
		cancel()
		select {
		case <-done:
			return nil
		case <-wait.Done():
			return wait.Err()
		}
	}
}

func newGRPCServer(ctx context.Context, cfg config.RateLimitConfig, log *zap.Logger, svc *service.Service) *grpc.Server {
	rl := middleware.NewRateLimiter(ctx, cfg.GRPCRPS, cfg.GRPCBurst)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(pb.Codec{}),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.RequestID(),
			middleware.Logging(log.Named("grpc")),
			middleware.RateLimit(rl),
		),
	)
	pb.RegisterAppointmentServiceServer(srv, handler.New(svc))
	return srv
}

func restOptions(cfg *config.Config, log *zap.Logger, rdb *redis.Client) rest.Options {
	opts := rest.Options{
		Logger: log.Named("rest"),
		RateLimit: rest.RateLimitOptions{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
			FailOpen: cfg.Redis.FailOpen,
		},
	}
	if rdb != nil {
		opts.RateLimit.Redis = rdb
		opts.ReadyChecks = append(opts.ReadyChecks, rest.RedisReadyCheck(rdb))
	}
	if cfg.Kafka.Brokers != "" {
		opts.ReadyChecks = append(opts.ReadyChecks, rest.ReadyCheck{
			Name:  "kafka",
			Check: events.ReadyCheck(cfg.Kafka.Brokers),
		})
	}
	return opts
}
