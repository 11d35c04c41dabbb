package validation

import (
	"testing"

	"github.com/medbook/medbook/internal/platform/apperr"
)

type bookRequest struct {
	DoctorID int64   `json:"doctor_id" validate:"required,gt=0"`
	Date     string  `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	Time     string  `json:"appointment_time" validate:"required,datetime=15:04"`
	Reason   string  `json:"reason" validate:"max=500"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Status   *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Name     *string `json:"name" validate:"omitempty,notblank"`
}

func valid() bookRequest {
	return bookRequest{DoctorID: 1, Date: "2025-06-01", Time: "10:00", Reason: "checkup"}
}

func TestValidate(t *testing.T) {
	v := New()
	bad := "archived"
	blank := "   "

	tests := []struct {
		name    string
		mutate  func(r *bookRequest)
		wantMsg string
	}{
		{"valid", func(r *bookRequest) {}, ""},
		{"missing doctor", func(r *bookRequest) { r.DoctorID = 0 }, "doctor_id is required"},
		{"bad date", func(r *bookRequest) { r.Date = "01/06/2025" }, "appointment_date must match the format YYYY-MM-DD"},
		{"bad time", func(r *bookRequest) { r.Time = "10am" }, "appointment_time must match the format HH:MM"},
		{"bad email", func(r *bookRequest) { r.Email = "nope" }, "email must be a valid email address"},
		{"bad status", func(r *bookRequest) { r.Status = &bad }, "status must be one of: scheduled, completed, cancelled"},
		{"blank name", func(r *bookRequest) { r.Name = &blank }, "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := v.Validate(r)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := apperr.HTTP(err, "").Message.(apperr.Body).Message; got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}
