package doctor

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/medbook/medbook/pkg/pagination"
)

type doctorRepoGorm struct{ db *gorm.DB }

func NewRepoGorm(db *gorm.DB) Repository { return &doctorRepoGorm{db: db} }

func (r *doctorRepoGorm) Create(ctx context.Context, d *Doctor) (int64, error) {
	row := *d
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *doctorRepoGorm) find(ctx context.Context, page pagination.Params, query interface{}, args ...interface{}) ([]*Doctor, error) {
	q := r.db.WithContext(ctx).Order("name ASC").Order("id ASC")
	if query != nil {
		q = q.Where(query, args...)
	}
	if page.Bounded() {
		q = q.Limit(page.Limit).Offset(page.Offset)
	}
	items := []*Doctor{}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *doctorRepoGorm) ListAll(ctx context.Context, page pagination.Params) ([]*Doctor, error) {
	return r.find(ctx, page, nil)
}

func (r *doctorRepoGorm) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	var d Doctor
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoGorm) ListBySpecialization(ctx context.Context, specialization string, page pagination.Params) ([]*Doctor, error) {
	return r.find(ctx, page, "specialization = ?", specialization)
}

func (r *doctorRepoGorm) Update(ctx context.Context, d *Doctor) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Doctor{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"name":           d.Name,
		"specialization": d.Specialization,
		"email":          d.Email,
		"phone":          d.Phone,
		"availability":   d.Availability,
	})
	return res.RowsAffected, res.Error
}

func (r *doctorRepoGorm) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Doctor{})
	return res.RowsAffected, res.Error
}
