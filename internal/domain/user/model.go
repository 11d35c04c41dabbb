package user

import (
	"time"
)

// User is an account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateRequest changes a profile. Nil fields are left as stored.
type UpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,notblank,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
