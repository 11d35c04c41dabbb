package appointment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbook/medbook/pkg/pagination"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type appointmentRepoPG struct{ db queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &appointmentRepoPG{db: pool} }

const joinedSelect = `
	SELECT a.id, a.user_id, a.doctor_id,
		to_char(a.appointment_date, 'YYYY-MM-DD'), to_char(a.appointment_time, 'HH24:MI'),
		a.reason, a.status, a.created_at,
		u.username, u.email, d.name, d.specialization, d.email
	FROM appointments a
	JOIN users u ON u.id = a.user_id
	JOIN doctors d ON d.id = a.doctor_id`

const newestFirst = ` ORDER BY a.appointment_date DESC, a.appointment_time DESC, a.id DESC`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	err := row.Scan(&a.ID, &a.UserID, &a.DoctorID, &a.Date, &a.Time, &a.Reason, &status, &a.CreatedAt,
		&a.Username, &a.Email, &a.DoctorName, &a.Specialization, &a.DoctorEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

func (r *appointmentRepoPG) list(ctx context.Context, where string, page pagination.Params, args ...interface{}) ([]*Appointment, error) {
	clause, pageArgs := page.SQL(len(args) + 1)
	rows, err := r.db.Query(ctx, joinedSelect+where+newestFirst+clause, append(args, pageArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) Create(ctx context.Context, userID, doctorID int64, date, tm, reason string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO appointments (user_id, doctor_id, appointment_date, appointment_time, reason, status)
		VALUES ($1, $2, $3::text::date, $4::text::time, $5, 'scheduled')
		RETURNING id`,
		userID, doctorID, date, tm, reason).Scan(&id)
	return id, err
}

func (r *appointmentRepoPG) ListAll(ctx context.Context, page pagination.Params) ([]*Appointment, error) {
	return r.list(ctx, "", page)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, joinedSelect+` WHERE a.id = $1`, id))
}

func (r *appointmentRepoPG) ListByUser(ctx context.Context, userID int64, page pagination.Params) ([]*Appointment, error) {
	return r.list(ctx, ` WHERE a.user_id = $1`, page, userID)
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID int64, page pagination.Params) ([]*Appointment, error) {
	return r.list(ctx, ` WHERE a.doctor_id = $1`, page, doctorID)
}

func (r *appointmentRepoPG) Update(ctx context.Context, id int64, from Status, date, tm, reason string, status Status) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET appointment_date = $3::text::date, appointment_time = $4::text::time, reason = $5, status = $6
		WHERE id = $1 AND status = $2`,
		id, string(from), date, tm, reason, string(status))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id int64, from, to Status) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE appointments SET status = $3 WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
