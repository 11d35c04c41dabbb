package doctor

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

type doctorRepoPG struct{ db queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &doctorRepoPG{db: pool} }

const doctorCols = `id, name, specialization, email, phone, availability, created_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.Email, &d.Phone, &d.Availability, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Doctor, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO doctors (name, specialization, email, phone, availability)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		d.Name, d.Specialization, d.Email, d.Phone, d.Availability).Scan(&id)
	return id, err
}

func (r *doctorRepoPG) ListAll(ctx context.Context, page pagination.Params) ([]*Doctor, error) {
	clause, args := page.SQL(1)
	return r.list(ctx, `SELECT `+doctorCols+` FROM doctors ORDER BY name ASC, id ASC`+clause, args...)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	return scanDoctor(r.db.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) ListBySpecialization(ctx context.Context, specialization string, page pagination.Params) ([]*Doctor, error) {
	clause, args := page.SQL(2)
	return r.list(ctx, `SELECT `+doctorCols+` FROM doctors WHERE specialization = $1 ORDER BY name ASC, id ASC`+clause,
		append([]interface{}{specialization}, args...)...)
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE doctors SET name = $2, specialization = $3, email = $4, phone = $5, availability = $6
		WHERE id = $1`,
		d.ID, d.Name, d.Specialization, d.Email, d.Phone, d.Availability)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *doctorRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
