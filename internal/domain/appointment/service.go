package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medbook/medbook/internal/platform/apperr"
	"github.com/medbook/medbook/internal/platform/auth"
	"github.com/medbook/medbook/internal/platform/events"
	"github.com/medbook/medbook/pkg/pagination"
)

// Observer receives lifecycle signals for metrics.
type Observer interface {
	StatusChanged(from, to string)
	EventPublished(eventType string, err error)
}

type nopObserver struct{}

func (nopObserver) StatusChanged(string, string)  {}
func (nopObserver) EventPublished(string, error) {}

type Service struct {
	appts  Repository
	events events.Publisher
	obs    Observer
	logger zerolog.Logger
	now    func() time.Time
}

// NewService wires the appointment service. pub and obs may be nil.
func NewService(appts Repository, pub events.Publisher, obs Observer, logger zerolog.Logger) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Service{appts: appts, events: pub, obs: obs, logger: logger, now: time.Now}
}

// Book creates an appointment for the caller. The status is always
// scheduled; a missing user or doctor surfaces from the foreign key as a
// storage error.
func (s *Service) Book(ctx context.Context, id auth.Identity, req BookRequest) (int64, error) {
	if !auth.CanAccess(id, auth.Appointment(id.UserID), auth.ActionCreate) {
		return 0, denied(id, "Not allowed to book appointments")
	}

	apptID, err := s.appts.Create(ctx, id.UserID, req.DoctorID, req.Date, normalizeTime(req.Time), strings.TrimSpace(req.Reason))
	if err != nil {
		return 0, apperr.Storage("Failed to create appointment", err)
	}

	s.publish(ctx, events.Event{
		Type:          events.AppointmentCreated,
		ActorID:       id.UserID,
		AppointmentID: apptID,
		UserID:        id.UserID,
		DoctorID:      req.DoctorID,
		Status:        string(StatusScheduled),
	})
	return apptID, nil
}

// List returns every appointment. Admin only.
func (s *Service) List(ctx context.Context, id auth.Identity, page pagination.Params) ([]*Appointment, error) {
	if !auth.CanAccess(id, auth.Appointment(0), auth.ActionList) {
		return nil, denied(id, "Not allowed to list all appointments")
	}
	items, err := s.appts.ListAll(ctx, page)
	if err != nil {
		return nil, apperr.Storage("Failed to get appointments", err)
	}
	return items, nil
}

// ListMine returns the caller's own appointments.
func (s *Service) ListMine(ctx context.Context, id auth.Identity, page pagination.Params) ([]*Appointment, error) {
	if !auth.CanAccess(id, auth.Appointment(id.UserID), auth.ActionList) {
		return nil, denied(id, "Not allowed to list appointments")
	}
	items, err := s.appts.ListByUser(ctx, id.UserID, page)
	if err != nil {
		return nil, apperr.Storage("Failed to get appointments", err)
	}
	return items, nil
}

// ListByDoctor returns a doctor's appointments. It spans patients, so it
// is admin only.
func (s *Service) ListByDoctor(ctx context.Context, id auth.Identity, doctorID int64, page pagination.Params) ([]*Appointment, error) {
	if !auth.CanAccess(id, auth.Appointment(0), auth.ActionList) {
		return nil, denied(id, "Not allowed to list a doctor's appointments")
	}
	items, err := s.appts.ListByDoctor(ctx, doctorID, page)
	if err != nil {
		return nil, apperr.Storage("Failed to get appointments", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id auth.Identity, apptID int64) (*Appointment, error) {
	return s.load(ctx, id, apptID, auth.ActionRead, "Failed to get appointment")
}

// Update applies the set fields of upd. A status change must follow the
// transition table.
func (s *Service) Update(ctx context.Context, id auth.Identity, apptID int64, upd Update) error {
	current, err := s.load(ctx, id, apptID, auth.ActionUpdate, "Failed to update appointment")
	if err != nil {
		return err
	}

	date, tm, reason, status := current.Date, current.Time, current.Reason, current.Status
	if upd.Date != nil {
		date = *upd.Date
	}
	if upd.Time != nil {
		tm = normalizeTime(*upd.Time)
	}
	if upd.Reason != nil {
		reason = strings.TrimSpace(*upd.Reason)
	}
	if upd.Status != nil {
		next, err := checkedStatus(*upd.Status)
		if err != nil {
			return err
		}
		if err := CheckTransition(current.Status, next); err != nil {
			return transitionErr(err)
		}
		status = next
	}

	n, err := s.appts.Update(ctx, apptID, current.Status, date, tm, reason, status)
	if err != nil {
		return apperr.Storage("Failed to update appointment", err)
	}
	if n == 0 {
		_, err := s.staleWrite(ctx, apptID, status, "Failed to update appointment")
		return err
	}

	s.publish(ctx, events.Event{
		Type:          events.AppointmentUpdated,
		ActorID:       id.UserID,
		AppointmentID: apptID,
		UserID:        current.UserID,
		DoctorID:      current.DoctorID,
		Status:        string(status),
	})
	if status != current.Status {
		s.statusChanged(ctx, id, current, status)
	}
	return nil
}

// UpdateStatus moves an appointment along its lifecycle. Re-setting the
// current status succeeds without writing.
func (s *Service) UpdateStatus(ctx context.Context, id auth.Identity, apptID int64, status Status) error {
	status, err := checkedStatus(status)
	if err != nil {
		return err
	}
	current, err := s.load(ctx, id, apptID, auth.ActionUpdate, "Failed to update appointment status")
	if err != nil {
		return err
	}
	if err := CheckTransition(current.Status, status); err != nil {
		return transitionErr(err)
	}
	if status == current.Status {
		return nil
	}

	n, err := s.appts.UpdateStatus(ctx, apptID, current.Status, status)
	if err != nil {
		return apperr.Storage("Failed to update appointment status", err)
	}
	if n == 0 {
		now, err := s.staleWrite(ctx, apptID, status, "Failed to update appointment status")
		if now == status {
			// a concurrent request already made the same move
			return nil
		}
		return err
	}
	s.statusChanged(ctx, id, current, status)
	return nil
}

func (s *Service) Delete(ctx context.Context, id auth.Identity, apptID int64) error {
	current, err := s.load(ctx, id, apptID, auth.ActionDelete, "Failed to delete appointment")
	if err != nil {
		return err
	}
	n, err := s.appts.Delete(ctx, apptID)
	if err != nil {
		return apperr.Storage("Failed to delete appointment", err)
	}
	if n == 0 {
		return apperr.NotFound("Appointment not found")
	}

	s.publish(ctx, events.Event{
		Type:          events.AppointmentDeleted,
		ActorID:       id.UserID,
		AppointmentID: apptID,
		UserID:        current.UserID,
		DoctorID:      current.DoctorID,
		Status:        string(current.Status),
	})
	return nil
}

// load fetches an appointment and checks that id may perform action on it.
func (s *Service) load(ctx context.Context, id auth.Identity, apptID int64, action auth.Action, failMsg string) (*Appointment, error) {
	if !id.Authenticated() {
		return nil, apperr.Unauthorized("Authentication required")
	}
	a, err := s.appts.GetByID(ctx, apptID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, apperr.Storage(failMsg, err)
	}
	if !auth.CanAccess(id, auth.Appointment(a.UserID), action) {
		return nil, apperr.Forbidden("Not allowed to access this appointment")
	}
	return a, nil
}

// staleWrite explains a guarded write that matched no row: the appointment
// is gone, or its status moved after it was read. It returns the status now
// stored alongside the error to report.
func (s *Service) staleWrite(ctx context.Context, apptID int64, to Status, failMsg string) (Status, error) {
	a, err := s.appts.GetByID(ctx, apptID)
	if errors.Is(err, ErrNotFound) {
		return "", apperr.NotFound("Appointment not found")
	}
	if err != nil {
		return "", apperr.Storage(failMsg, err)
	}
	return a.Status, transitionErr(&TransitionError{From: a.Status, To: to})
}

func (s *Service) statusChanged(ctx context.Context, id auth.Identity, prev *Appointment, to Status) {
	s.obs.StatusChanged(string(prev.Status), string(to))
	s.publish(ctx, events.Event{
		Type:          events.AppointmentStatusChanged,
		ActorID:       id.UserID,
		AppointmentID: prev.ID,
		UserID:        prev.UserID,
		DoctorID:      prev.DoctorID,
		Status:        string(to),
		PrevStatus:    string(prev.Status),
	})
}

// publish never fails the request; the write has already committed.
func (s *Service) publish(ctx context.Context, evt events.Event) {
	evt.ID = uuid.NewString()
	evt.OccurredAt = s.now().UTC()

	err := s.events.Publish(ctx, evt)
	s.obs.EventPublished(string(evt.Type), err)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("event_type", string(evt.Type)).
			Int64("appointment_id", evt.AppointmentID).
			Msg("failed to publish appointment event")
	}
}

func checkedStatus(s Status) (Status, error) {
	st, err := ParseStatus(string(s))
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "status must be one of: scheduled, completed, cancelled", err)
	}
	return st, nil
}

func transitionErr(err error) error {
	return apperr.Wrap(apperr.KindInvalidTransition, err.Error(), err)
}

func denied(id auth.Identity, msg string) error {
	if !id.Authenticated() {
		return apperr.Unauthorized("Authentication required")
	}
	return apperr.Forbidden(msg)
}
