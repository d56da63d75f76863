package models

import (
	"time"

	"github.com/google/uuid"
)

// Like is unique per (diary, user); the index makes the toggle race-safe.
type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DiaryID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_diary_user" json:"diary_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_diary_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
