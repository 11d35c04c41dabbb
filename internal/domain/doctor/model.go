package doctor

import "time"

type Doctor struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Availability   string    `json:"availability"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Doctor) TableName() string { return "doctors" }

type CreateRequest struct {
	Name           string `json:"name" validate:"required,notblank,max=100"`
	Specialization string `json:"specialization" validate:"required,notblank,max=100"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Phone          string `json:"phone" validate:"max=50"`
	Availability   string `json:"availability"`
}

// UpdateRequest is a partial update; nil fields keep their stored value.
type UpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,notblank,max=100"`
	Specialization *string `json:"specialization" validate:"omitempty,notblank,max=100"`
	Email          *string `json:"email" validate:"omitempty,email,max=255"`
	Phone          *string `json:"phone" validate:"omitempty,max=50"`
	Availability   *string `json:"availability"`
}

// apply merges the set fields of r into d.
func (r UpdateRequest) apply(d *Doctor) {
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.Specialization != nil {
		d.Specialization = *r.Specialization
	}
	if r.Email != nil {
		d.Email = *r.Email
	}
	if r.Phone != nil {
		d.Phone = *r.Phone
	}
	if r.Availability != nil {
		d.Availability = *r.Availability
	}
}
