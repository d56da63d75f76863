package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound       = errors.New("report not found")
	ErrContentInappropriate = errors.New("content does not meet the community guidelines")
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"spam", "scam", "scammer", "phishing", "malware",
	"死ね", "殺す", "殺すぞ",
}

// ModerationService filters UGC text and runs the report/review pipeline
// behind the admin dashboard.
type ModerationService struct {
	db                *gorm.DB
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	compiled          bool
	mu                sync.RWMutex
}

func NewModerationService(db *gorm.DB) *ModerationService {
	ms := &ModerationService{db: db}
	ms.compilePatterns()
	return ms
}

func (ms *ModerationService) compilePatterns() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.compiled {
		return
	}

	ms.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		pattern := `(?i)` + regexp.QuoteMeta(word)
		// Word boundaries only work for ASCII terms.
		if word[0] < 0x80 {
			pattern = `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		}
		re, err := regexp.Compile(pattern)
		if err == nil {
			ms.bannedWordRegexps = append(ms.bannedWordRegexps, re)
		}
	}

	ms.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	ms.compiled = true
}

// FilterContent reports whether the text is acceptable, with a machine
// readable reason when it is not.
func (ms *ModerationService) FilterContent(text string) (bool, string) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if text == "" {
		return true, ""
	}
	for _, re := range ms.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if ms.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	return true, ""
}

func (ms *ModerationService) GetRejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language": "投稿に不適切な表現が含まれています",
		"url_not_allowed":        "URLを含む投稿はできません",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "投稿がコミュニティガイドラインに適合していません"
}

func (s *ModerationService) CreateReport(ctx context.Context, reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	validTypes := map[string]bool{"user": true, "post": true, "comment": true}
	if !validTypes[req.ContentType] {
		return nil, errors.New("invalid content_type: must be user, post, or comment")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, errors.New("reason is required")
	}

	report := models.Report{
		ID:          uuid.New(),
		ReporterID:  reporterID,
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		Reason:      req.Reason,
		Status:      "pending",
	}

	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

func (s *ModerationService) ListReports(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (s *ModerationService) ActionReport(ctx context.Context, reportID uuid.UUID, req *dto.ActionReportRequest) error {
	validStatuses := map[string]bool{"reviewed": true, "actioned": true, "dismissed": true}
	if !validStatuses[req.Status] {
		return errors.New("invalid status: must be reviewed, actioned, or dismissed")
	}

	result := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"status":     req.Status,
			"admin_note": req.AdminNote,
		})
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return result.Error
}

// ListUsers returns users with their entry counts for the admin panel.
func (s *ModerationService) ListUsers(ctx context.Context, limit, offset int) ([]dto.AdminUserResponse, int64, error) {
	var total int64
	s.db.WithContext(ctx).Model(&models.User{}).Count(&total)

	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	out := make([]dto.AdminUserResponse, len(users))
	for i, u := range users {
		var entryCount int64
		s.db.WithContext(ctx).Model(&models.DiaryEntry{}).Where("user_id = ?", u.ID).Count(&entryCount)
		out[i] = dto.AdminUserResponse{
			ID:          u.ID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Role:        u.Role,
			IsBlocked:   u.IsBlocked,
			EntryCount:  entryCount,
			CreatedAt:   u.CreatedAt,
		}
	}
	return out, total, nil
}

// SetUserBlocked flips the admin silence flag on an account. A silenced
// account can still sign in but all write paths reject it.
func (s *ModerationService) SetUserBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_blocked", blocked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Stats feeds the admin dashboard header.
func (s *ModerationService) Stats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	var stats dto.AdminStatsResponse
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	db.Model(&models.User{}).Where("is_blocked = true").Count(&stats.BlockedUsers)
	db.Model(&models.DiaryEntry{}).Count(&stats.TotalEntries)
	db.Model(&models.Comment{}).Count(&stats.TotalComments)
	db.Model(&models.Report{}).Where("status = 'pending'").Count(&stats.PendingReports)

	return &stats, nil
}
