package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is both the auth identity and the public profile row.
// Password is empty for OAuth-only accounts.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	DisplayName  string         `gorm:"size:280" json:"display_name"`
	AvatarURL    string         `gorm:"type:text" json:"avatar_url"`
	Role         string         `gorm:"size:20;default:'user'" json:"role"`
	IsBlocked    bool           `gorm:"default:false" json:"is_blocked"`
	AuthProvider string         `gorm:"size:50;default:'email'" json:"-"`
	GoogleUserID *string        `gorm:"size:255;index" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
