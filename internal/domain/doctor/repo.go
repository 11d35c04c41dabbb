package doctor

import (
	"context"
	"errors"

	"github.com/medbook/medbook/pkg/pagination"
)

var ErrNotFound = errors.New("doctor not found")

// Repository is the doctor data-access contract. Update is a full replace
// of the five mutable fields.
type Repository interface {
	Create(ctx context.Context, d *Doctor) (int64, error)
	ListAll(ctx context.Context, page pagination.Params) ([]*Doctor, error)
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	ListBySpecialization(ctx context.Context, specialization string, page pagination.Params) ([]*Doctor, error)
	Update(ctx context.Context, d *Doctor) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
