package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Reason      string `json:"reason"`
}

type ActionReportRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
}

type BlockUserRequest struct {
	BlockedID uuid.UUID `json:"blocked_id"`
}

type ToggleBlockResponse struct {
	Blocked bool `json:"blocked"`
}

type AdminUserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	IsBlocked   bool      `json:"is_blocked"`
	EntryCount  int64     `json:"entry_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type AdminStatsResponse struct {
	TotalUsers     int64 `json:"total_users"`
	BlockedUsers   int64 `json:"blocked_users"`
	TotalEntries   int64 `json:"total_entries"`
	TotalComments  int64 `json:"total_comments"`
	PendingReports int64 `json:"pending_reports"`
}
