package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type PublisherConfig struct {
	Brokers   string
	PollEvery time.Duration
	BatchSize int
	// DrainTimeout bounds the final flush once Run's context is done.
	DrainTimeout time.Duration
}

type Publisher struct {
	outbox    *Outbox
	logger    *zap.Logger
	brokers   []string
	pollEvery time.Duration
	batchSize int
	drainFor  time.Duration

	newWriter func(brokers []string) MessageWriter
}

func NewPublisher(outbox *Outbox, logger *zap.Logger, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	return &Publisher{
		outbox:    outbox,
		logger:    logger,
		brokers:   SplitBrokers(cfg.Brokers),
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
		drainFor:  cfg.DrainTimeout,
		newWriter: func(brokers []string) MessageWriter {
			return kafka.NewWriter(kafka.WriterConfig{
				Brokers:  brokers,
				Balancer: &kafka.Hash{},
			})
		},
	}
}

// Run publishes queued events until ctx is done, then flushes what is left
// within DrainTimeout. It returns at once when no brokers are configured.
func (p *Publisher) Run(ctx context.Context) {
	if len(p.brokers) == 0 {
		p.logger.Warn("event publisher disabled (no kafka brokers configured)")
		return
	}

	writer := p.newWriter(p.brokers)
	defer writer.Close()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.drain(context.WithoutCancel(ctx), writer)
			return
		case <-ticker.C:
			if err := p.Flush(ctx, writer); err != nil {
				p.logger.Error("event publish failed", zap.Error(err), zap.Int("pending", p.outbox.Len()))
			}
		}
	}
}

func (p *Publisher) drain(ctx context.Context, w MessageWriter) {
	ctx, cancel := context.WithTimeout(ctx, p.drainFor)
	defer cancel()
	for p.outbox.Len() > 0 {
		if err := p.Flush(ctx, w); err != nil {
			p.logger.Error("final event flush failed", zap.Error(err), zap.Int("pending", p.outbox.Len()))
			return
		}
	}
}

// Flush writes one batch. On failure the batch goes back to the outbox.
func (p *Publisher) Flush(ctx context.Context, w MessageWriter) error {
	batch := p.outbox.Drain(p.batchSize)
	if len(batch) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(batch))
	for _, e := range batch {
		msg, err := Message(e)
		if err != nil {
			// unencodable events are dropped; retrying cannot fix them
			p.logger.Error("event encode failed", zap.Error(err), zap.String("event_id", e.ID))
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	if err := w.WriteMessages(ctx, msgs...); err != nil {
		p.outbox.Requeue(batch)
		return err
	}
	p.logger.Debug("events published", zap.Int("count", len(msgs)))
	return nil
}

// Message encodes e for Kafka: topic is the event type, key the patient email.
func Message(e Event) (kafka.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: string(e.Type),
		Key:   []byte(e.Appointment.Patient.Email),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.ID)},
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}, nil
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ReadyCheck dials the first configured broker.
func ReadyCheck(brokers string) func(context.Context) error {
	return func(ctx context.Context) error {
		list := SplitBrokers(brokers)
		if len(list) == 0 {
			return errors.New("kafka brokers not configured")
		}
		dialer := kafka.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", list[0])
		if err != nil {
			return err
		}
		_ = conn.Close()
		return nil
	}
}
