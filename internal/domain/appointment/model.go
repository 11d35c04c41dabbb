package appointment

import "time"

// Appointment is a booking joined with the requester and doctor details
// that the list and detail views show.
type Appointment struct {
	ID        int64     `json:"id" gorm:"column:id"`
	UserID    int64     `json:"user_id" gorm:"column:user_id"`
	DoctorID  int64     `json:"doctor_id" gorm:"column:doctor_id"`
	Date      string    `json:"appointment_date" gorm:"column:appointment_date"`
	Time      string    `json:"appointment_time" gorm:"column:appointment_time"`
	Reason    string    `json:"reason" gorm:"column:reason"`
	Status    Status    `json:"status" gorm:"column:status"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`

	Username       string `json:"username,omitempty" gorm:"column:username"`
	Email          string `json:"email,omitempty" gorm:"column:email"`
	DoctorName     string `json:"doctor_name,omitempty" gorm:"column:doctor_name"`
	Specialization string `json:"specialization,omitempty" gorm:"column:specialization"`
	DoctorEmail    string `json:"doctor_email,omitempty" gorm:"column:doctor_email"`
}

// BookRequest is the create body. A status in the body is ignored; new
// appointments always start scheduled.
type BookRequest struct {
	DoctorID int64  `json:"doctor_id" validate:"required,gt=0"`
	Date     string `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"appointment_time" validate:"required,datetime=15:04"`
	Reason   string `json:"reason" validate:"max=1000"`
}

// Update is a partial update. Nil fields keep their stored value.
type Update struct {
	Date   *string `json:"appointment_date" validate:"omitempty,datetime=2006-01-02"`
	Time   *string `json:"appointment_time" validate:"omitempty,datetime=15:04"`
	Reason *string `json:"reason" validate:"omitempty,max=1000"`
	Status *Status `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

type StatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=scheduled completed cancelled"`
}

// normalizeTime renders "9:05" and "09:05" alike.
func normalizeTime(v string) string {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return v
	}
	return t.Format("15:04")
}
