package user

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	RoleUser       = "user"
	RoleStallOwner = "stall_owner"
	RoleAdmin      = "admin"
)

type User struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone,omitempty"`
	PasswordHash       string     `json:"-"`
	Role               string     `json:"role"`
	StallID            *uuid.UUID `json:"stall_id,omitempty"`
	LanguagePreference string     `json:"language_preference"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleStallOwner, RoleAdmin:
		return true
	}
	return false
}
