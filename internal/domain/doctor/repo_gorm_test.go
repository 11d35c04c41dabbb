package doctor

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

func TestRepoGorm_CRUD(t *testing.T) {
	repo := NewRepoGorm(openTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &Doctor{Name: "Dr. A", Specialization: "Cardiology", Email: "a@x.com", Phone: "555", Availability: "Mon-Fri"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	d, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if d.Name != "Dr. A" || d.Availability != "Mon-Fri" {
		t.Errorf("unexpected doctor %+v", d)
	}

	d.Phone = "556"
	if n, err := repo.Update(ctx, d); err != nil || n != 1 {
		t.Fatalf("Update: %d %v", n, err)
	}
	if n, _ := repo.Update(ctx, &Doctor{ID: 999}); n != 0 {
		t.Errorf("expected 0 rows for missing doctor, got %d", n)
	}

	if n, _ := repo.Delete(ctx, id); n != 1 {
		t.Errorf("expected 1 deleted row, got %d", n)
	}
	if _, err := repo.GetByID(ctx, id); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepoGorm_OrderingAndSpecialization(t *testing.T) {
	repo := NewRepoGorm(openTestDB(t))
	ctx := context.Background()
	for _, d := range []Doctor{
		{Name: "Dr. Zed", Specialization: "Cardiology", Email: "z@x.com"},
		{Name: "Dr. Amy", Specialization: "Dermatology", Email: "a@x.com"},
		{Name: "Dr. Max", Specialization: "Cardiology", Email: "m@x.com"},
	} {
		d := d
		if _, err := repo.Create(ctx, &d); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, _ := repo.ListAll(ctx, pagination.Params{})
	if len(all) != 3 || all[0].Name != "Dr. Amy" || all[2].Name != "Dr. Zed" {
		t.Errorf("expected name ascending order, got %v", all)
	}

	cardio, _ := repo.ListBySpecialization(ctx, "Cardiology", pagination.Params{})
	if len(cardio) != 2 || cardio[0].Name != "Dr. Max" {
		t.Errorf("unexpected specialization result %v", cardio)
	}
	if none, _ := repo.ListBySpecialization(ctx, "cardiology", pagination.Params{}); len(none) != 0 {
		t.Error("specialization match must be exact")
	}

	page, _ := repo.ListAll(ctx, pagination.Params{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].Name != "Dr. Max" {
		t.Errorf("unexpected page %v", page)
	}
}

func TestRepoGorm_DeleteBookedDoctorFails(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewRepoGorm(gdb)
	ctx := context.Background()

	id, _ := repo.Create(ctx, &Doctor{Name: "Dr. A", Specialization: "Cardiology", Email: "a@x.com"})
	if err := gdb.Exec(`INSERT INTO users (id, username, email, password) VALUES (1, 'u', 'u@x.com', 'h')`).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := gdb.Exec(`INSERT INTO appointments (user_id, doctor_id, appointment_date, appointment_time) VALUES (1, ?, '2025-06-01', '10:00')`, id).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	if _, err := repo.Delete(ctx, id); err == nil {
		t.Error("expected foreign key violation deleting a booked doctor")
	}
	if _, err := repo.GetByID(ctx, id); err != nil {
		t.Errorf("doctor must survive the failed delete: %v", err)
	}
}
