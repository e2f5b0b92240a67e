package models

import (
	"time"
)

type User struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	IsStaff      bool       `gorm:"not null;default:false" json:"is_staff"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// All lists every model managed by migrations.
func All() []any {
	return []any{
		&User{},
		&Section{},
		&SectionStageHistory{},
		&TaskTemplate{},
		&Task{},
		&VisitLog{},
		&Metric{},
		&Photo{},
	}
}
