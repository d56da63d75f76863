package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrSelfBlock      = errors.New("cannot block yourself")
	ErrAlreadyBlocked = errors.New("user already blocked")
)

// BlockService maintains the viewer's block relationships. Storage is
// one-directional; read paths exclude both directions (see ExcludeBlocked)
// so blocker and blocked become mutually invisible.
type BlockService struct {
	db *gorm.DB
}

func NewBlockService(db *gorm.DB) *BlockService {
	return &BlockService{db: db}
}

func (s *BlockService) GetBlockedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var blocks []models.UserBlock
	if err := s.db.WithContext(ctx).Where("blocker_id = ?", userID).Find(&blocks).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(blocks))
	for i, b := range blocks {
		ids[i] = b.BlockedID
	}
	return ids, nil
}

// ListBlocked returns the user rows the viewer has blocked, newest block
// first.
func (s *BlockService) ListBlocked(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN user_blocks ON user_blocks.blocked_id = users.id").
		Where("user_blocks.blocker_id = ?", userID).
		Order("user_blocks.created_at DESC").
		Find(&users).Error
	return users, err
}

func (s *BlockService) IsBlocked(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserBlock{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

func (s *BlockService) Block(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	var existing models.UserBlock
	if err := s.db.WithContext(ctx).Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).First(&existing).Error; err == nil {
		return ErrAlreadyBlocked
	}

	block := models.UserBlock{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
	}
	return s.db.WithContext(ctx).Create(&block).Error
}

func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.UserBlock{}).Error
}

// Toggle blocks when unblocked and unblocks when blocked; applying it
// twice restores the original state.
func (s *BlockService) Toggle(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error) {
	blocked, err := s.IsBlocked(ctx, blockerID, blockedID)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, s.Unblock(ctx, blockerID, blockedID)
	}
	return true, s.Block(ctx, blockerID, blockedID)
}

// ExcludeBlocked is a GORM scope that removes rows authored by users the
// viewer blocked or was blocked by. Anonymous rows (NULL author) pass.
// The column is qualified by the caller, e.g. "diary_entries.user_id".
func ExcludeBlocked(column string, viewerID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewerID == uuid.Nil {
			return db
		}
		return db.Where(
			column+" IS NULL OR ("+
				column+" NOT IN (SELECT blocked_id FROM user_blocks WHERE blocker_id = ?) AND "+
				column+" NOT IN (SELECT blocker_id FROM user_blocks WHERE blocked_id = ?))",
			viewerID, viewerID,
		)
	}
}
