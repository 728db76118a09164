// Package rest serves the appointment API over HTTP/JSON.
package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"appointment-booking-api/internal/service"
)

type RateLimitOptions struct {
	Requests int
	Window   time.Duration
	// Redis switches to the shared fixed-window limiter when set.
	Redis    redis.Scripter
	FailOpen bool
}

type Options struct {
	Logger      *zap.Logger
	RateLimit   RateLimitOptions
	ReadyChecks []ReadyCheck
}

func NewRouter(svc *service.Service, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := NewAppointmentHandler(svc, log)

	router := chi.NewRouter()
	router.Use(RequestID(log))
	router.Use(AccessLog(log))
	router.Use(Recover(log))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Route not found"})
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "Method not allowed"})
	})

	router.Get("/healthz", healthz)
	router.Get("/readyz", readyz(opts.ReadyChecks))

	router.Route("/appointment", func(r chi.Router) {
		r.Use(rateLimiter(opts.RateLimit, log))

		r.Get("/patient", h.ListByPatient)
		r.Get("/doctor", h.ListByDoctor)
		r.Get("/slots", h.FreeSlots)
		r.Post("/", h.Create)
		r.Delete("/", h.Delete)
		r.Patch("/", h.Update)
	})

	return otelhttp.NewHandler(router, "appointment-booking-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func rateLimiter(opts RateLimitOptions, log *zap.Logger) func(http.Handler) http.Handler {
	if opts.Requests <= 0 {
		opts.Requests = 100
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.Redis != nil {
		return NewRedisRateLimiter(opts.Redis, opts.Requests, opts.Window, "appointment-booking-api:rl").
			Middleware(log, opts.FailOpen)
	}
	return httprate.Limit(opts.Requests, opts.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
}
