package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-storefront/internal/models"
)

type recordingSink struct {
	name string
	err  error

	mu     sync.Mutex
	events []models.ActivityEvent
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Write(ctx context.Context, event models.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func TestFanOutDeliversToEverySink(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b", err: errors.New("unavailable")}
	pub := NewFanOut(a, b)

	pub.Publish(context.Background(), models.EventBalanceCredited, "user-1", map[string]string{"amount": "25"})
	pub.Close()

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, models.EventBalanceCredited, a.events[0].Type)
	assert.Equal(t, "user-1", a.events[0].UserID)
	assert.Equal(t, "25", a.events[0].Attributes["amount"])
	assert.NotEmpty(t, a.events[0].ID)
	assert.Equal(t, a.events[0].ID, b.events[0].ID)
	assert.Equal(t, []string{"a", "b"}, pub.Sinks())
}

func TestFanOutIgnoresCancelledRequest(t *testing.T) {
	sink := &recordingSink{name: "a"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pub := NewFanOut(sink)
	pub.Publish(ctx, models.EventUserLoggedOut, "user-1", nil)
	pub.Close()

	assert.Len(t, sink.events, 1)
}

type blockingSink struct {
	release chan struct{}
	written chan models.ActivityEvent
}

func (s *blockingSink) Name() string { return "slow" }

func (s *blockingSink) Write(ctx context.Context, event models.ActivityEvent) error {
	<-s.release
	s.written <- event
	return nil
}

func TestFanOutDoesNotWaitForSinks(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), written: make(chan models.ActivityEvent, 2)}
	pub := NewFanOut(sink)

	start := time.Now()
	pub.Publish(context.Background(), models.EventNumberRequested, "user-1", nil)
	pub.Publish(context.Background(), models.EventCodeReceived, "user-1", nil)
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, sink.written)

	close(sink.release)
	pub.Close()

	require.Len(t, sink.written, 2)
	assert.Equal(t, models.EventNumberRequested, (<-sink.written).Type)
	assert.Equal(t, models.EventCodeReceived, (<-sink.written).Type)

	pub.Publish(context.Background(), models.EventUserLoggedOut, "user-1", nil)
	pub.Close()
	assert.Empty(t, sink.written)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	p.Publish(context.Background(), models.EventUserSignedUp, "u", nil)
}
