// Package events fans activity records out to analytics sinks. Publishing
// never fails or delays the request that produced the event.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sms-storefront/internal/metrics"
	"sms-storefront/internal/models"
	"sms-storefront/internal/util"
)

const (
	publishTimeout = 3 * time.Second
	queueSize      = 256
)

// Sink delivers one event to a backend.
type Sink interface {
	Name() string
	Write(ctx context.Context, event models.ActivityEvent) error
}

type Publisher interface {
	Publish(ctx context.Context, eventType models.EventType, userID string, attrs map[string]string)
}

// FanOut queues events and writes each one to all sinks concurrently from a
// single background worker. Events published while the queue is full are
// dropped and counted.
type FanOut struct {
	sinks []Sink
	now   func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan models.ActivityEvent
	done   chan struct{}
}

func NewFanOut(sinks ...Sink) *FanOut {
	f := &FanOut{sinks: sinks, now: time.Now, done: make(chan struct{})}
	if len(sinks) == 0 {
		close(f.done)
		return f
	}
	f.queue = make(chan models.ActivityEvent, queueSize)
	go f.run()
	return f
}

func (f *FanOut) Sinks() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name()
	}
	return names
}

// Publish enqueues the event and returns at once.
func (f *FanOut) Publish(ctx context.Context, eventType models.EventType, userID string, attrs map[string]string) {
	if len(f.sinks) == 0 {
		return
	}

	event := models.ActivityEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		Attributes: attrs,
		OccurredAt: f.now().UTC(),
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	select {
	case f.queue <- event:
	default:
		metrics.RecordEventDropped()
		util.Warn("Activity event queue full, dropping event",
			util.String("event_type", string(eventType)),
		)
	}
}

// Close stops accepting events and waits until the queued ones are
// delivered. Safe to call more than once.
func (f *FanOut) Close() {
	f.mu.Lock()
	if !f.closed && f.queue != nil {
		close(f.queue)
	}
	f.closed = true
	f.mu.Unlock()

	<-f.done
}

func (f *FanOut) run() {
	defer close(f.done)
	for event := range f.queue {
		f.deliver(event)
	}
}

func (f *FanOut) deliver(event models.ActivityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	var g errgroup.Group
	for _, sink := range f.sinks {
		g.Go(func() error {
			if err := sink.Write(ctx, event); err != nil {
				metrics.RecordEventPublish(sink.Name(), false)
				util.Warn("Failed to publish activity event",
					util.String("sink", sink.Name()),
					util.String("event_type", string(event.Type)),
					util.ErrorField(err),
				)
				return nil
			}
			metrics.RecordEventPublish(sink.Name(), true)
			return nil
		})
	}
	_ = g.Wait()
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, models.EventType, string, map[string]string) {}
