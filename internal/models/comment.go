package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment belongs to a diary entry. Nickname is the snapshot at comment
// time; NULL means the comment was posted anonymously.
type Comment struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DiaryID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"diary_id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	Nickname  *string        `gorm:"size:280" json:"nickname"`
	Content   string         `gorm:"size:280;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
