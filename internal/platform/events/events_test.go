package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/medbook/medbook/internal/platform/breaker"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func sampleEvent() Event {
	return Event{
		ID:            "evt-1",
		Type:          AppointmentStatusChanged,
		OccurredAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		ActorID:       7,
		AppointmentID: 42,
		Status:        "completed",
		PrevStatus:    "scheduled",
	}
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{ch: ch, queue: "appointment-events", cb: breaker.New("amqp-test", breaker.Settings{}, zerolog.Nop())}

	if err := p.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(ch.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.published))
	}
	if ch.keys[0] != "/appointment-events" {
		t.Errorf("expected default exchange routed to queue, got %q", ch.keys[0])
	}
	msg := ch.published[0]
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" {
		t.Errorf("unexpected publishing %+v", msg)
	}

	var got Event
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if got.AppointmentID != 42 || got.PrevStatus != "scheduled" {
		t.Errorf("unexpected event %+v", got)
	}

	if err := p.Close(); err != nil || !ch.closed {
		t.Errorf("expected channel closed, err=%v", err)
	}
}

func TestAMQPPublisher_BreakerOpens(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &AMQPPublisher{ch: ch, queue: "q", cb: breaker.New("amqp-test", breaker.Settings{Failures: 2}, zerolog.Nop())}

	for i := 0; i < 2; i++ {
		if err := p.Publish(context.Background(), sampleEvent()); err == nil {
			t.Fatal("expected publish error")
		}
	}

	ch.err = nil
	err := p.Publish(context.Background(), sampleEvent())
	if err == nil || !strings.Contains(err.Error(), "open") {
		t.Errorf("expected open breaker error, got %v", err)
	}
	if len(ch.published) != 0 {
		t.Error("nothing should reach the broker while the breaker is open")
	}
}

func TestAMQPPublisher_CancelledContext(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{ch: ch, queue: "q", cb: breaker.New("amqp-test", breaker.Settings{}, zerolog.Nop())}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, sampleEvent()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := LogPublisher{Logger: zerolog.New(&buf)}

	if err := p.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.Contains(buf.String(), `"type":"appointment.status_changed"`) {
		t.Errorf("expected event type in log, got %s", buf.String())
	}
	if err := (NopPublisher{}).Publish(context.Background(), sampleEvent()); err != nil {
		t.Errorf("nop publisher returned %v", err)
	}
}
