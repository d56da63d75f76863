package models

import (
	"time"

	"github.com/google/uuid"
)

// UserBlock is stored one-directionally; read paths exclude both
// directions so blocker and blocked stop seeing each other.
type UserBlock struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_blocks_pair;index" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_blocks_pair;index" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
	Blocker   User      `gorm:"foreignKey:BlockerID" json:"-"`
	Blocked   User      `gorm:"foreignKey:BlockedID" json:"-"`
}

func (UserBlock) TableName() string {
	return "user_blocks"
}
