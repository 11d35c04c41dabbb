package user

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

type userRepoPG struct{ db queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &userRepoPG{db: pool} }

// public projection; the hash is only read by FindByEmail
const userCols = `id, username, email, role, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password, role)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'patient'))
		RETURNING id`,
		u.Username, u.Email, u.Password, u.Role).Scan(&id)
	return id, err
}

func (r *userRepoPG) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, `SELECT `+userCols+`, password FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepoPG) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) ListAll(ctx context.Context, page pagination.Params) ([]*User, error) {
	clause, args := page.SQL(1)
	rows, err := r.db.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY id`+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *userRepoPG) Update(ctx context.Context, id int64, username, email string) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE users SET username = $2, email = $3 WHERE id = $1`, id, username, email)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *userRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
