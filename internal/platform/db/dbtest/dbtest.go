// Package dbtest gives repository tests a migrated PostgreSQL database.
// Tests skip unless MEDBOOK_TEST_DATABASE_URL is set.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbook/medbook/internal/platform/db"
)

// EnvURL names the variable holding the test database URL. The database
// is truncated by every test that uses it.
const EnvURL = "MEDBOOK_TEST_DATABASE_URL"

// lockKey serializes test packages that share the database; go test runs
// packages in parallel.
const lockKey = 0x6d6564626f6f6b

// Pool returns a pool on an empty, fully migrated schema. The pool is
// closed and the lock released when t finishes.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skip(EnvURL + " not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, url, db.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	lock, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := lock.Exec(ctx, `SELECT pg_advisory_lock($1)`, int64(lockKey)); err != nil {
		lock.Release()
		t.Fatalf("advisory lock: %v", err)
	}
	t.Cleanup(func() {
		_, _ = lock.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, int64(lockKey))
		lock.Release()
	})

	if _, err := db.NewMigrator(pool, db.Migrations, "migrations").Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE appointments, doctors, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}
