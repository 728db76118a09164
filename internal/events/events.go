// Package events records appointment changes and ships them to Kafka.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"appointment-booking-api/internal/model"
)

type Type string

const (
	TypeBooked      Type = "appointment.booked.v1"
	TypeCancelled   Type = "appointment.cancelled.v1"
	TypeRescheduled Type = "appointment.rescheduled.v1"
)

type Event struct {
	ID               string            `json:"event_id"`
	Type             Type              `json:"event_type"`
	Appointment      model.Appointment `json:"appointment"`
	PreviousTimeSlot string            `json:"previous_time_slot,omitempty"`
	OccurredAt       time.Time         `json:"occurred_at"`
}

func New(t Type, a model.Appointment) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		Appointment: a,
		OccurredAt:  time.Now().UTC(),
	}
}

// Sink accepts events without blocking.
type Sink interface {
	Enqueue(e Event)
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Enqueue(Event) {}

// Outbox is a bounded FIFO of events waiting to be published. When full, the
// oldest event is dropped.
type Outbox struct {
	mu       sync.Mutex
	queue    []Event
	capacity int
	dropped  int
}

func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Outbox{capacity: capacity}
}

func (o *Outbox) Enqueue(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) >= o.capacity {
		o.queue = o.queue[1:]
		o.dropped++
	}
	o.queue = append(o.queue, e)
}

// Drain removes and returns up to max events from the head of the queue.
func (o *Outbox) Drain(max int) []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := len(o.queue)
	if max > 0 && max < n {
		n = max
	}
	out := make([]Event, n)
	copy(out, o.queue[:n])
	o.queue = o.queue[n:]
	return out
}

// Requeue puts events back at the head of the queue, ahead of anything
// enqueued since they were drained, trimming the tail to capacity.
func (o *Outbox) Requeue(evts []Event) {
	if len(evts) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	q := make([]Event, 0, len(evts)+len(o.queue))
	q = append(q, evts...)
	q = append(q, o.queue...)
	if over := len(q) - o.capacity; over > 0 {
		q = q[:o.capacity]
		o.dropped += over
	}
	o.queue = q
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Dropped counts events lost to overflow.
func (o *Outbox) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}
