package appointment

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/medbook/medbook/pkg/pagination"
)

// appointmentRow is the write model; Appointment carries joined columns
// that do not exist on the table.
type appointmentRow struct {
	ID              int64     `gorm:"primaryKey"`
	UserID          int64     `gorm:"column:user_id"`
	DoctorID        int64     `gorm:"column:doctor_id"`
	AppointmentDate string    `gorm:"column:appointment_date"`
	AppointmentTime string    `gorm:"column:appointment_time"`
	Reason          string    `gorm:"column:reason"`
	Status          string    `gorm:"column:status"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (appointmentRow) TableName() string { return "appointments" }

type appointmentRepoGorm struct{ db *gorm.DB }

func NewRepoGorm(db *gorm.DB) Repository { return &appointmentRepoGorm{db: db} }

const gormJoinedSelect = `
	SELECT a.id, a.user_id, a.doctor_id, a.appointment_date, a.appointment_time,
		a.reason, a.status, a.created_at,
		u.username AS username, u.email AS email,
		d.name AS doctor_name, d.specialization AS specialization, d.email AS doctor_email
	FROM appointments a
	JOIN users u ON u.id = a.user_id
	JOIN doctors d ON d.id = a.doctor_id`

const gormNewestFirst = ` ORDER BY a.appointment_date DESC, a.appointment_time DESC, a.id DESC`

func (r *appointmentRepoGorm) list(ctx context.Context, where string, page pagination.Params, args ...interface{}) ([]*Appointment, error) {
	query := gormJoinedSelect + where + gormNewestFirst
	if page.Bounded() {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Limit, page.Offset)
	}
	items := []*Appointment{}
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *appointmentRepoGorm) Create(ctx context.Context, userID, doctorID int64, date, tm, reason string) (int64, error) {
	row := appointmentRow{
		UserID:          userID,
		DoctorID:        doctorID,
		AppointmentDate: date,
		AppointmentTime: tm,
		Reason:          reason,
		Status:          string(StatusScheduled),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *appointmentRepoGorm) ListAll(ctx context.Context, page pagination.Params) ([]*Appointment, error) {
	return r.list(ctx, "", page)
}

func (r *appointmentRepoGorm) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	items, err := r.list(ctx, ` WHERE a.id = ?`, pagination.Params{}, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

func (r *appointmentRepoGorm) ListByUser(ctx context.Context, userID int64, page pagination.Params) ([]*Appointment, error) {
	return r.list(ctx, ` WHERE a.user_id = ?`, page, userID)
}

func (r *appointmentRepoGorm) ListByDoctor(ctx context.Context, doctorID int64, page pagination.Params) ([]*Appointment, error) {
	return r.list(ctx, ` WHERE a.doctor_id = ?`, page, doctorID)
}

func (r *appointmentRepoGorm) Update(ctx context.Context, id int64, from Status, date, tm, reason string, status Status) (int64, error) {
	res := r.db.WithContext(ctx).Model(&appointmentRow{}).Where("id = ? AND status = ?", id, string(from)).Updates(map[string]interface{}{
		"appointment_date": date,
		"appointment_time": tm,
		"reason":           reason,
		"status":           string(status),
	})
	return res.RowsAffected, res.Error
}

func (r *appointmentRepoGorm) UpdateStatus(ctx context.Context, id int64, from, to Status) (int64, error) {
	res := r.db.WithContext(ctx).Model(&appointmentRow{}).Where("id = ? AND status = ?", id, string(from)).Update("status", string(to))
	return res.RowsAffected, res.Error
}

func (r *appointmentRepoGorm) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&appointmentRow{})
	return res.RowsAffected, res.Error
}
