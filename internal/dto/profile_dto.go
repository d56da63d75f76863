package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
}

type PublicProfileResponse struct {
	ID               uuid.UUID `json:"id"`
	DisplayName      string    `json:"display_name"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	EntryCount       int64     `json:"entry_count"`
	BlockedByViewer  bool      `json:"blocked_by_viewer"`
	CreatedAt        time.Time `json:"created_at"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

type UpdateSettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}
