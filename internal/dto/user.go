package dto

import (
	"time"

	"github.com/riverkeep/river-ops/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64     `json:"id"`
	Username    string     `json:"username"`
	IsStaff     bool       `json:"is_staff"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		IsStaff:     user.IsStaff,
		LastLoginAt: user.LastLoginAt,
	}
}
