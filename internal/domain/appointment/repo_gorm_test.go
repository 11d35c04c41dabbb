package appointment

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/medbook/medbook/internal/platform/db"
	"github.com/medbook/medbook/pkg/pagination"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenSQLite("file:" + name + "?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.CloseSQLite(gdb) })
	return gdb
}

// seed inserts two patients and one doctor with ids 1, 2 and 1.
func seed(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO users (username, email, password, role) VALUES ('alice', 'alice@x.com', 'h', 'patient')`,
		`INSERT INTO users (username, email, password, role) VALUES ('bob', 'bob@x.com', 'h', 'patient')`,
		`INSERT INTO doctors (name, specialization, email) VALUES ('Dr. A', 'Cardiology', 'a@clinic.com')`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestRepoGorm_BookingLifecycle(t *testing.T) {
	gdb := openTestDB(t)
	seed(t, gdb)
	repo := NewRepoGorm(gdb)
	ctx := context.Background()

	id, err := repo.Create(ctx, 1, 1, "2025-03-01", "09:30", "checkup")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.Status != StatusScheduled || a.Date != "2025-03-01" || a.Time != "09:30" {
		t.Errorf("unexpected appointment %+v", a)
	}
	if a.Username != "alice" || a.DoctorName != "Dr. A" || a.Specialization != "Cardiology" || a.DoctorEmail != "a@clinic.com" {
		t.Errorf("joined fields missing: %+v", a)
	}

	if n, err := repo.UpdateStatus(ctx, id, StatusScheduled, StatusCompleted); err != nil || n != 1 {
		t.Fatalf("UpdateStatus: %d %v", n, err)
	}
	if n, _ := repo.UpdateStatus(ctx, id, StatusScheduled, StatusCancelled); n != 0 {
		t.Errorf("expected stale status to match no row, got %d", n)
	}
	if n, _ := repo.Update(ctx, id, StatusScheduled, "2025-04-01", "08:00", "stale", StatusScheduled); n != 0 {
		t.Errorf("expected stale update to match no row, got %d", n)
	}
	if n, err := repo.Update(ctx, id, StatusCompleted, "2025-03-02", "10:00", "moved", StatusCompleted); err != nil || n != 1 {
		t.Fatalf("Update: %d %v", n, err)
	}
	a, _ = repo.GetByID(ctx, id)
	if a.Status != StatusCompleted || a.Date != "2025-03-02" || a.Reason != "moved" {
		t.Errorf("unexpected appointment after update %+v", a)
	}

	if n, _ := repo.UpdateStatus(ctx, 999, StatusScheduled, StatusCancelled); n != 0 {
		t.Errorf("expected 0 rows for missing appointment, got %d", n)
	}
	if n, _ := repo.Delete(ctx, id); n != 1 {
		t.Errorf("expected 1 deleted row, got %d", n)
	}
	if n, _ := repo.Delete(ctx, id); n != 0 {
		t.Errorf("expected 0 rows on second delete, got %d", n)
	}
	if _, err := repo.GetByID(ctx, id); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepoGorm_Ordering(t *testing.T) {
	gdb := openTestDB(t)
	seed(t, gdb)
	repo := NewRepoGorm(gdb)
	ctx := context.Background()

	repo.Create(ctx, 1, 1, "2025-03-01", "09:00", "")
	repo.Create(ctx, 1, 1, "2025-03-02", "08:00", "")
	repo.Create(ctx, 2, 1, "2025-03-02", "10:00", "")

	all, err := repo.ListAll(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 || all[0].ID != 3 || all[1].ID != 2 || all[2].ID != 1 {
		t.Fatalf("expected newest first, got %+v", all)
	}

	mine, _ := repo.ListByUser(ctx, 1, pagination.Params{})
	if len(mine) != 2 {
		t.Errorf("expected 2 appointments for user 1, got %d", len(mine))
	}

	page, _ := repo.ListByDoctor(ctx, 1, pagination.Params{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].ID != 2 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestRepoGorm_ForeignKeys(t *testing.T) {
	gdb := openTestDB(t)
	seed(t, gdb)
	repo := NewRepoGorm(gdb)
	ctx := context.Background()

	if _, err := repo.Create(ctx, 1, 42, "2025-03-01", "09:00", ""); err == nil {
		t.Error("expected foreign key error for unknown doctor")
	}

	id, _ := repo.Create(ctx, 2, 1, "2025-03-01", "09:00", "")
	if err := gdb.Exec(`DELETE FROM users WHERE id = 2`).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := repo.GetByID(ctx, id); err != ErrNotFound {
		t.Errorf("expected appointment to cascade with its user, got %v", err)
	}
}
