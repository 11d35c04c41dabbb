// Package events publishes appointment lifecycle events. Publishing is
// best effort: callers log a failure and carry on.
package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type Type string

const (
	AppointmentCreated       Type = "appointment.created"
	AppointmentUpdated       Type = "appointment.updated"
	AppointmentStatusChanged Type = "appointment.status_changed"
	AppointmentDeleted       Type = "appointment.deleted"
)

// Event is the JSON envelope sent to subscribers.
type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	OccurredAt    time.Time `json:"occurred_at"`
	ActorID       int64     `json:"actor_id"`
	AppointmentID int64     `json:"appointment_id"`
	UserID        int64     `json:"user_id,omitempty"`
	DoctorID      int64     `json:"doctor_id,omitempty"`
	Status        string    `json:"status,omitempty"`
	PrevStatus    string    `json:"previous_status,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// LogPublisher writes events to the log. It is the fallback when no broker
// is configured.
type LogPublisher struct {
	Logger zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, evt Event) error {
	p.Logger.Info().
		Str("event_id", evt.ID).
		Str("type", string(evt.Type)).
		Int64("appointment_id", evt.AppointmentID).
		Int64("actor_id", evt.ActorID).
		Str("status", evt.Status).
		Msg("appointment event")
	return nil
}
