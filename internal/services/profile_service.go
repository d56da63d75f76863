package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"gorm.io/gorm"
)

const MaxDisplayNameLength = 280

var ErrDisplayNameInvalid = errors.New("display name is empty or too long")

// ProfileService serves public profile pages and profile edits.
type ProfileService struct {
	db     *gorm.DB
	blocks *BlockService
}

func NewProfileService(db *gorm.DB, blocks *BlockService) *ProfileService {
	return &ProfileService{db: db, blocks: blocks}
}

// Get returns the public view of a user, including whether the viewer
// has blocked them.
func (s *ProfileService) Get(ctx context.Context, viewerID, userID uuid.UUID) (*dto.PublicProfileResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var entryCount int64
	s.db.WithContext(ctx).Model(&models.DiaryEntry{}).
		Where("user_id = ? AND is_public = ?", userID, true).
		Count(&entryCount)

	blockedByViewer := false
	if viewerID != uuid.Nil {
		blocked, err := s.blocks.IsBlocked(ctx, viewerID, userID)
		if err == nil {
			blockedByViewer = blocked
		}
	}

	return &dto.PublicProfileResponse{
		ID:              user.ID,
		DisplayName:     user.DisplayName,
		AvatarURL:       user.AvatarURL,
		EntryCount:      entryCount,
		BlockedByViewer: blockedByViewer,
		CreatedAt:       user.CreatedAt,
	}, nil
}

// UpdateDisplayName changes the profile name. Entry nickname snapshots are
// untouched; the feed resolves the current name at read time.
func (s *ProfileService) UpdateDisplayName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return nil, ErrDisplayNameInvalid
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("display_name", name).Error; err != nil {
		return nil, err
	}
	user.DisplayName = name
	return &user, nil
}

// SetAvatarURL persists the uploaded avatar's public URL on the profile.
// An empty URL clears it.
func (s *ProfileService) SetAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar_url", avatarURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
