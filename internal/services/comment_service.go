package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"gorm.io/gorm"
)

const MaxCommentLength = 280

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentTooLong  = errors.New("comment exceeds the length limit")
)

// CommentService handles the comment threads under diary entries.
type CommentService struct {
	db         *gorm.DB
	settings   *SettingsService
	moderation *ModerationService
}

func NewCommentService(db *gorm.DB, settings *SettingsService, moderation *ModerationService) *CommentService {
	return &CommentService{db: db, settings: settings, moderation: moderation}
}

type commentRow struct {
	models.Comment
	AuthorDisplayName *string `gorm:"column:author_display_name"`
	AuthorAvatarURL   *string `gorm:"column:author_avatar_url"`
}

func (r *commentRow) toResponse() dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:          r.ID,
		DiaryID:     r.DiaryID,
		UserID:      r.UserID,
		DisplayName: resolveEntryName(r.Nickname, r.AuthorDisplayName),
		Content:     r.Content,
		CreatedAt:   r.CreatedAt,
	}
	if r.Nickname != nil && r.AuthorAvatarURL != nil {
		resp.AvatarURL = *r.AuthorAvatarURL
	}
	return resp
}

// List returns a thread oldest-first with author names resolved in the
// same query, filtered by the viewer's block relationships.
func (s *CommentService) List(ctx context.Context, viewerID, diaryID uuid.UUID) (*dto.CommentListResponse, error) {
	var entry models.DiaryEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ? AND is_public = ?", diaryID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiaryNotFound
		}
		return nil, err
	}

	var rows []commentRow
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select(`comments.*,
			users.display_name AS author_display_name,
			users.avatar_url AS author_avatar_url`).
		Joins("LEFT JOIN users ON users.id = comments.user_id AND users.deleted_at IS NULL").
		Where("comments.diary_id = ?", diaryID).
		Scopes(ExcludeBlocked("comments.user_id", viewerID)).
		Order("comments.created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	comments := make([]dto.CommentResponse, len(rows))
	for i := range rows {
		comments[i] = rows[i].toResponse()
	}

	return &dto.CommentListResponse{Comments: comments, Total: int64(len(comments))}, nil
}

// Create posts a comment and bumps the entry's counter in one transaction.
func (s *CommentService) Create(ctx context.Context, author *models.User, diaryID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if author.IsBlocked {
		return nil, ErrAccountSilenced
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrContentRequired
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}
	if req.IsAnonymous && !s.settings.Bool(ctx, models.SettingAllowAnonymousPosts) {
		return nil, ErrAnonymousDisabled
	}
	if ok, reason := s.moderation.FilterContent(content); !ok {
		return nil, fmt.Errorf("%w: %s", ErrContentInappropriate, s.moderation.GetRejectionMessage(reason))
	}

	var entry models.DiaryEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ? AND is_public = ?", diaryID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiaryNotFound
		}
		return nil, err
	}

	comment := models.Comment{
		ID:      uuid.New(),
		DiaryID: diaryID,
		UserID:  &author.ID,
		Content: content,
	}
	if !req.IsAnonymous {
		nickname := author.DisplayName
		comment.Nickname = &nickname
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.DiaryEntry{}).Where("id = ?", diaryID).
			Update("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	row := commentRow{Comment: comment}
	if !req.IsAnonymous {
		row.AuthorDisplayName = &author.DisplayName
		row.AuthorAvatarURL = &author.AvatarURL
	}
	resp := row.toResponse()
	return &resp, nil
}

// Delete removes a comment. Allowed for the comment author, the owner of
// the diary entry it sits under, and admins.
func (s *CommentService) Delete(ctx context.Context, viewer *models.User, commentID uuid.UUID) error {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	allowed := viewer.IsAdmin() ||
		(comment.UserID != nil && *comment.UserID == viewer.ID)
	if !allowed {
		var entry models.DiaryEntry
		if err := s.db.WithContext(ctx).First(&entry, "id = ?", comment.DiaryID).Error; err == nil {
			allowed = entry.UserID != nil && *entry.UserID == viewer.ID
		}
	}
	if !allowed {
		return ErrNotOwner
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.DiaryEntry{}).Where("id = ?", comment.DiaryID).
			Update("comment_count", gorm.Expr("GREATEST(comment_count - 1, 0)")).Error
	})
}
