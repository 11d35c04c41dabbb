package appointment

import (
	"context"
	"errors"

	"github.com/medbook/medbook/pkg/pagination"
)

var ErrNotFound = errors.New("appointment not found")

// Repository is the appointment data-access contract. Every write is one
// autocommitted statement and reports the affected-row count; lists are
// ordered newest first by date then time. Update and UpdateStatus only
// match a row whose status is still from.
type Repository interface {
	Create(ctx context.Context, userID, doctorID int64, date, time, reason string) (int64, error)
	ListAll(ctx context.Context, page pagination.Params) ([]*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	ListByUser(ctx context.Context, userID int64, page pagination.Params) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int64, page pagination.Params) ([]*Appointment, error)
	Update(ctx context.Context, id int64, from Status, date, time, reason string, status Status) (int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
