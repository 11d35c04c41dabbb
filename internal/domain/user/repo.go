package user

import (
	"context"
	"errors"

	"github.com/medbook/medbook/pkg/pagination"
)

var ErrNotFound = errors.New("user not found")

// Repository is the user data-access contract. FindByEmail is the only
// method that returns the password hash.
type Repository interface {
	Create(ctx context.Context, u *User) (int64, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	ListAll(ctx context.Context, page pagination.Params) ([]*User, error)
	Update(ctx context.Context, id int64, username, email string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
