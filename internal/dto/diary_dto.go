package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDiaryRequest struct {
	Content     string  `json:"content"`
	Emotion     *string `json:"emotion"`
	IsAnonymous bool    `json:"is_anonymous"`
	IsPublic    bool    `json:"is_public"`
}

type UpdateDiaryRequest struct {
	Content  *string `json:"content"`
	Emotion  *string `json:"emotion"`
	IsPublic *bool   `json:"is_public"`
}

// DiaryResponse carries an entry together with everything a card render
// needs, so clients never issue per-entry follow-up fetches.
type DiaryResponse struct {
	ID            uuid.UUID  `json:"id"`
	UserID        *uuid.UUID `json:"user_id"`
	DisplayName   string     `json:"display_name"`
	AvatarURL     string     `json:"avatar_url,omitempty"`
	Content       string     `json:"content"`
	Emotion       *string    `json:"emotion"`
	EmotionLabel  string     `json:"emotion_label,omitempty"`
	IsPublic      bool       `json:"is_public"`
	LikeCount     int        `json:"like_count"`
	CommentCount  int        `json:"comment_count"`
	LikedByViewer bool       `json:"liked_by_viewer"`
	CreatedAt     time.Time  `json:"created_at"`
}

type FeedResponse struct {
	Entries         []DiaryResponse `json:"entries"`
	Total           int64           `json:"total"`
	TotalUnfiltered int64           `json:"total_unfiltered"`
	Page            int             `json:"page"`
	Limit           int             `json:"limit"`
	HasMore         bool            `json:"has_more"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type ShareResponse struct {
	URL string `json:"url"`
}
