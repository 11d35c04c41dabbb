package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/medbook/medbook/pkg/pagination"
)

type userRepoGorm struct{ db *gorm.DB }

// NewRepoGorm returns a Repository over a gorm handle, used with the SQLite
// development store.
func NewRepoGorm(db *gorm.DB) Repository { return &userRepoGorm{db: db} }

var publicCols = []string{"id", "username", "email", "role", "created_at"}

func (r *userRepoGorm) Create(ctx context.Context, u *User) (int64, error) {
	row := *u
	row.ID = 0
	if row.Role == "" {
		row.Role = "patient"
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *userRepoGorm) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepoGorm) FindByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Select(publicCols).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepoGorm) ListAll(ctx context.Context, page pagination.Params) ([]*User, error) {
	q := r.db.WithContext(ctx).Select(publicCols).Order("id")
	if page.Bounded() {
		q = q.Limit(page.Limit).Offset(page.Offset)
	}
	items := []*User{}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *userRepoGorm) Update(ctx context.Context, id int64, username, email string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"username": username, "email": email})
	return res.RowsAffected, res.Error
}

func (r *userRepoGorm) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	return res.RowsAffected, res.Error
}
