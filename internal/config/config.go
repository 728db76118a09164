package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	OTEL      OTELConfig
	SeedData  bool
}

type ServerConfig struct {
	HTTPPort        int
	GRPCPort        int
	WebPort         int
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Env   string
	Level string
}

// RateLimitConfig covers the REST window limiter and the per-peer gRPC
// token bucket.
type RateLimitConfig struct {
	Requests  int
	Window    time.Duration
	GRPCRPS   float64
	GRPCBurst int
}

// RedisConfig enables the shared REST rate limiter when URL is set.
type RedisConfig struct {
	URL      string
	FailOpen bool
}

// KafkaConfig enables event publishing when Brokers is set.
type KafkaConfig struct {
	Brokers        string
	PollInterval   time.Duration
	OutboxCapacity int
}

type OTELConfig struct {
	Enabled       bool
	Endpoint      string
	SamplingRatio float64
	ServiceName   string
}

// Load reads configuration from the environment. Every malformed value is
// reported, not only the first.
func Load() (*Config, error) {
	l := &loader{}
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:        l.port("HTTP_PORT", 8080),
			GRPCPort:        l.port("GRPC_PORT", 50051),
			WebPort:         l.port("WEB_PORT", 8081),
			ShutdownTimeout: l.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Env:   getEnv("APP_ENV", "development"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		RateLimit: RateLimitConfig{
			Requests:  l.positiveInt("RATE_LIMIT_REQUESTS", 100),
			Window:    l.duration("RATE_LIMIT_WINDOW", time.Minute),
			GRPCRPS:   l.number("GRPC_RATE_LIMIT_RPS", 5),
			GRPCBurst: l.positiveInt("GRPC_RATE_LIMIT_BURST", 10),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			FailOpen: l.boolean("REDIS_FAIL_OPEN", true),
		},
		Kafka: KafkaConfig{
			Brokers:        getEnv("KAFKA_BROKERS", ""),
			PollInterval:   l.duration("KAFKA_POLL_INTERVAL", 2*time.Second),
			OutboxCapacity: l.positiveInt("OUTBOX_CAPACITY", 1024),
		},
		OTEL: OTELConfig{
			Enabled:       l.boolean("OTEL_ENABLED", false),
			Endpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SamplingRatio: l.number("OTEL_SAMPLING_RATIO", 1),
			ServiceName:   getEnv("OTEL_SERVICE_NAME", "appointment-booking-api"),
		},
		SeedData: l.boolean("SEED_DATA", true),
	}
	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type loader struct {
	errs []error
}

func (l *loader) fail(key, value, want string) {
	l.errs = append(l.errs, fmt.Errorf("%s: invalid value %q, want %s", key, value, want))
}

func (l *loader) integer(key string, defaultValue int) (int, bool) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		l.fail(key, value, "an integer")
		return defaultValue, false
	}
	return n, true
}

func (l *loader) port(key string, defaultValue int) int {
	n, ok := l.integer(key, defaultValue)
	if ok && (n < 1 || n > 65535) {
		l.fail(key, os.Getenv(key), "a port between 1 and 65535")
		return defaultValue
	}
	return n
}

func (l *loader) positiveInt(key string, defaultValue int) int {
	n, ok := l.integer(key, defaultValue)
	if ok && n <= 0 {
		l.fail(key, os.Getenv(key), "a positive integer")
		return defaultValue
	}
	return n
}

func (l *loader) number(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		l.fail(key, value, "a non-negative number")
		return defaultValue
	}
	return f
}

func (l *loader) boolean(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		l.fail(key, value, "a boolean")
		return defaultValue
	}
	return b
}

func (l *loader) duration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		l.fail(key, value, "a positive duration such as 10s")
		return defaultValue
	}
	return d
}
