package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Known boolean setting keys.
const (
	SettingAllowNewRegistration = "allow_new_registration"
	SettingAllowAnonymousPosts  = "allow_anonymous_posts"
	SettingMaintenanceMode      = "maintenance_mode"
)

// SystemSetting stores global key/value toggles read as typed values.
type SystemSetting struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Type      string    `gorm:"size:20;default:'string'" json:"type"` // string, bool, int
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *SystemSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
