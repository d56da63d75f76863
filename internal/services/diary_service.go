package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/cache"
	"github.com/namisapo/minna-diary-backend/internal/config"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultPageSize   = 30
	MaxPageSize       = 100
	MaxContentLength  = 10000
	anonymousName     = "匿名"
	shareTextMaxRunes = 100
)

var (
	ErrDiaryNotFound     = errors.New("diary entry not found")
	ErrNotOwner          = errors.New("you do not have permission to modify this entry")
	ErrInvalidEmotion    = errors.New("unknown emotion tag")
	ErrContentRequired   = errors.New("content is required")
	ErrContentTooLong    = errors.New("content is too long")
	ErrAnonymousDisabled = errors.New("anonymous posting is currently disabled")
	ErrAccountSilenced   = errors.New("this account has been restricted from posting")
)

// FeedFilters is the board page's search surface. Zero values mean "no
// filter"; date bounds are inclusive whole days in the given location.
type FeedFilters struct {
	Keyword  string
	Author   string
	Emotion  string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

func (f *FeedFilters) Active() bool {
	return strings.TrimSpace(f.Keyword) != "" ||
		strings.TrimSpace(f.Author) != "" ||
		strings.TrimSpace(f.Emotion) != "" ||
		f.DateFrom != nil || f.DateTo != nil
}

func (f *FeedFilters) normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Page < 0 {
		f.Page = 0
	}
}

// DayStart returns 00:00:00 of the date in loc, DayEnd 23:59:59.999...
// matching the board's inclusive date-range semantics.
func DayStart(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func DayEnd(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

// DiaryService implements feed composition and entry mutations.
type DiaryService struct {
	db         *gorm.DB
	cfg        *config.Config
	settings   *SettingsService
	moderation *ModerationService
	cache      *cache.Cache
}

func NewDiaryService(db *gorm.DB, cfg *config.Config, settings *SettingsService, moderation *ModerationService, c *cache.Cache) *DiaryService {
	return &DiaryService{db: db, cfg: cfg, settings: settings, moderation: moderation, cache: c}
}

// feedRow is the scan target of the batched feed query: the entry plus
// the author's current profile fields and the viewer's like state.
type feedRow struct {
	models.DiaryEntry
	AuthorDisplayName *string `gorm:"column:author_display_name"`
	AuthorAvatarURL   *string `gorm:"column:author_avatar_url"`
	LikedByViewer     bool    `gorm:"column:liked_by_viewer"`
}

func (r *feedRow) toResponse() dto.DiaryResponse {
	resp := dto.DiaryResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		DisplayName:   resolveEntryName(r.Nickname, r.AuthorDisplayName),
		Content:       r.Content,
		Emotion:       r.Emotion,
		IsPublic:      r.IsPublic,
		LikeCount:     r.LikeCount,
		CommentCount:  r.CommentCount,
		LikedByViewer: r.LikedByViewer,
		CreatedAt:     r.CreatedAt,
	}
	if r.Emotion != nil {
		resp.EmotionLabel = models.EmotionLabels[*r.Emotion]
	}
	// Anonymous entries never expose the author's avatar.
	if r.Nickname != nil && r.AuthorAvatarURL != nil {
		resp.AvatarURL = *r.AuthorAvatarURL
	}
	return resp
}

// resolveEntryName picks the shown author name: anonymous posts are always
// 匿名 regardless of profile; otherwise the author's CURRENT display name
// wins over the snapshot so renames show up on old posts.
func resolveEntryName(nickname, currentName *string) string {
	if nickname == nil || *nickname == "" {
		return anonymousName
	}
	if currentName != nil && *currentName != "" {
		return *currentName
	}
	return *nickname
}

func (s *DiaryService) baseFeedQuery(ctx context.Context, viewerID uuid.UUID) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.DiaryEntry{}).
		Where("diary_entries.is_public = ?", true).
		Scopes(ExcludeBlocked("diary_entries.user_id", viewerID))
}

// withAggregates attaches the per-entry card fields: the author's current
// profile and the viewer's like state, resolved in the same statement.
func withAggregates(q *gorm.DB, viewerID uuid.UUID) *gorm.DB {
	return q.Select(`diary_entries.*,
		users.display_name AS author_display_name,
		users.avatar_url AS author_avatar_url,
		EXISTS(SELECT 1 FROM likes WHERE likes.diary_id = diary_entries.id AND likes.user_id = ?) AS liked_by_viewer`,
		viewerID).
		Joins("LEFT JOIN users ON users.id = diary_entries.user_id AND users.deleted_at IS NULL")
}

// escapeLike neutralizes LIKE metacharacters so user input matches
// literally; backslash is Postgres' default escape character.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func applyFilters(q *gorm.DB, f *FeedFilters) *gorm.DB {
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		q = q.Where("diary_entries.content ILIKE ?", "%"+escapeLike(kw)+"%")
	}
	if author := strings.TrimSpace(f.Author); author != "" {
		q = q.Where("diary_entries.nickname ILIKE ?", "%"+escapeLike(author)+"%")
	}
	if emotion := strings.TrimSpace(f.Emotion); emotion != "" {
		q = q.Where("diary_entries.emotion = ?", emotion)
	}
	if f.DateFrom != nil {
		q = q.Where("diary_entries.created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("diary_entries.created_at <= ?", *f.DateTo)
	}
	return q
}

// GetFeed composes the board page in a single round trip per page: block
// exclusion, the conjunctive filters, and the per-entry aggregates all run
// inside one SQL statement.
func (s *DiaryService) GetFeed(ctx context.Context, viewerID uuid.UUID, filters FeedFilters) (*dto.FeedResponse, error) {
	filters.normalize()

	if emotion := strings.TrimSpace(filters.Emotion); emotion != "" && !models.ValidEmotion(emotion) {
		return nil, ErrInvalidEmotion
	}

	// The anonymous, unfiltered first page is the hottest read.
	cacheable := viewerID == uuid.Nil && !filters.Active() &&
		filters.Page == 0 && filters.Limit == DefaultPageSize
	if cacheable {
		var cached dto.FeedResponse
		if s.cache.GetFeedFirstPage(ctx, &cached) {
			return &cached, nil
		}
	}

	var totalUnfiltered int64
	if err := s.baseFeedQuery(ctx, viewerID).Count(&totalUnfiltered).Error; err != nil {
		return nil, err
	}

	var total int64
	if err := applyFilters(s.baseFeedQuery(ctx, viewerID), &filters).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []feedRow
	q := withAggregates(applyFilters(s.baseFeedQuery(ctx, viewerID), &filters), viewerID).
		Order("diary_entries.created_at DESC").
		Offset(filters.Page * filters.Limit).
		Limit(filters.Limit)

	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]dto.DiaryResponse, len(rows))
	for i := range rows {
		entries[i] = rows[i].toResponse()
	}

	resp := &dto.FeedResponse{
		Entries:         entries,
		Total:           total,
		TotalUnfiltered: totalUnfiltered,
		Page:            filters.Page,
		Limit:           filters.Limit,
		HasMore:         int64((filters.Page+1)*filters.Limit) < total,
	}

	if cacheable {
		s.cache.SetFeedFirstPage(ctx, resp)
	}
	return resp, nil
}

// Get returns one public entry with the same aggregates as the feed.
func (s *DiaryService) Get(ctx context.Context, viewerID, diaryID uuid.UUID) (*dto.DiaryResponse, error) {
	var row feedRow
	err := withAggregates(s.db.WithContext(ctx).Model(&models.DiaryEntry{}), viewerID).
		Where("diary_entries.id = ? AND diary_entries.is_public = ?", diaryID, true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiaryNotFound
		}
		return nil, err
	}

	resp := row.toResponse()
	return &resp, nil
}

// UserEntries lists one author's public entries newest first, with the
// feed's aggregates. Matching is by user id, so anonymous posts and posts
// made under an old display name are included on the author's own page.
func (s *DiaryService) UserEntries(ctx context.Context, viewerID, userID uuid.UUID, page, limit int) (*dto.FeedResponse, error) {
	f := FeedFilters{Page: page, Limit: limit}
	f.normalize()

	var total int64
	err := s.baseFeedQuery(ctx, viewerID).
		Where("diary_entries.user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	var rows []feedRow
	q := withAggregates(s.baseFeedQuery(ctx, viewerID), viewerID).
		Where("diary_entries.user_id = ?", userID).
		Order("diary_entries.created_at DESC").
		Offset(f.Page * f.Limit).
		Limit(f.Limit)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]dto.DiaryResponse, len(rows))
	for i := range rows {
		entries[i] = rows[i].toResponse()
	}

	return &dto.FeedResponse{
		Entries:         entries,
		Total:           total,
		TotalUnfiltered: total,
		Page:            f.Page,
		Limit:           f.Limit,
		HasMore:         int64((f.Page+1)*f.Limit) < total,
	}, nil
}

// Create posts a new entry. All business rules the SPA used to check in
// the browser run here, before any write.
func (s *DiaryService) Create(ctx context.Context, author *models.User, req *dto.CreateDiaryRequest) (*dto.DiaryResponse, error) {
	if author.IsBlocked {
		return nil, ErrAccountSilenced
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrContentRequired
	}
	if len(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}
	if req.Emotion != nil && *req.Emotion != "" && !models.ValidEmotion(*req.Emotion) {
		return nil, ErrInvalidEmotion
	}
	if req.IsAnonymous && !s.settings.Bool(ctx, models.SettingAllowAnonymousPosts) {
		return nil, ErrAnonymousDisabled
	}
	if ok, reason := s.moderation.FilterContent(content); !ok {
		return nil, fmt.Errorf("%w: %s", ErrContentInappropriate, s.moderation.GetRejectionMessage(reason))
	}

	entry := models.DiaryEntry{
		ID:       uuid.New(),
		UserID:   &author.ID,
		Content:  content,
		IsPublic: req.IsPublic,
	}
	if req.Emotion != nil && *req.Emotion != "" {
		entry.Emotion = req.Emotion
	}
	if !req.IsAnonymous {
		nickname := author.DisplayName
		entry.Nickname = &nickname
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create diary entry: %w", err)
	}

	s.cache.InvalidateFeed(ctx)

	row := feedRow{DiaryEntry: entry}
	if !req.IsAnonymous {
		row.AuthorDisplayName = &author.DisplayName
		row.AuthorAvatarURL = &author.AvatarURL
	}
	resp := row.toResponse()
	return &resp, nil
}

// CanModify reports whether the viewer may edit or delete the entry:
// the owner, or any admin.
func CanModify(entry *models.DiaryEntry, viewer *models.User) bool {
	if viewer == nil {
		return false
	}
	if viewer.IsAdmin() {
		return true
	}
	return entry.UserID != nil && *entry.UserID == viewer.ID
}

func (s *DiaryService) Update(ctx context.Context, viewer *models.User, diaryID uuid.UUID, req *dto.UpdateDiaryRequest) (*dto.DiaryResponse, error) {
	var entry models.DiaryEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", diaryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiaryNotFound
		}
		return nil, err
	}

	if !CanModify(&entry, viewer) {
		return nil, ErrNotOwner
	}

	updates := map[string]interface{}{}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, ErrContentRequired
		}
		if len(content) > MaxContentLength {
			return nil, ErrContentTooLong
		}
		if ok, reason := s.moderation.FilterContent(content); !ok {
			return nil, fmt.Errorf("%w: %s", ErrContentInappropriate, s.moderation.GetRejectionMessage(reason))
		}
		updates["content"] = content
	}
	if req.Emotion != nil {
		if *req.Emotion == "" {
			updates["emotion"] = nil
		} else {
			if !models.ValidEmotion(*req.Emotion) {
				return nil, ErrInvalidEmotion
			}
			updates["emotion"] = *req.Emotion
		}
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&entry).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update diary entry: %w", err)
		}
		s.cache.InvalidateFeed(ctx)
	}

	// Re-read through the aggregate query so the caller gets the same
	// card shape as the feed. No is_public clause: the owner may have
	// just made the entry private.
	var row feedRow
	err := withAggregates(s.db.WithContext(ctx).Model(&models.DiaryEntry{}), viewer.ID).
		Where("diary_entries.id = ?", diaryID).
		First(&row).Error
	if err != nil {
		return nil, err
	}

	resp := row.toResponse()
	return &resp, nil
}

func (s *DiaryService) Delete(ctx context.Context, viewer *models.User, diaryID uuid.UUID) error {
	var entry models.DiaryEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", diaryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDiaryNotFound
		}
		return err
	}

	if !CanModify(&entry, viewer) {
		return ErrNotOwner
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx.Where("diary_id = ?", diaryID).Delete(&models.Comment{})
		tx.Where("diary_id = ?", diaryID).Delete(&models.Like{})
		return tx.Delete(&entry).Error
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateFeed(ctx)
	return nil
}

// ToggleLike flips the viewer's like inside a transaction. The unique
// index on (diary_id, user_id) makes racing toggles safe: the second
// insert fails instead of double-counting.
func (s *DiaryService) ToggleLike(ctx context.Context, viewer *models.User, diaryID uuid.UUID) (*dto.LikeResponse, error) {
	if viewer.IsBlocked {
		return nil, ErrAccountSilenced
	}

	var entry models.DiaryEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ? AND is_public = ?", diaryID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiaryNotFound
		}
		return nil, err
	}

	var liked bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("diary_id = ? AND user_id = ?", diaryID, viewer.ID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return tx.Model(&models.DiaryEntry{}).Where("id = ?", diaryID).
				Update("like_count", gorm.Expr("GREATEST(like_count - 1, 0)")).Error
		}

		like := models.Like{ID: uuid.New(), DiaryID: diaryID, UserID: viewer.ID}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		liked = true
		return tx.Model(&models.DiaryEntry{}).Where("id = ?", diaryID).
			Update("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	var refreshed models.DiaryEntry
	if err := s.db.WithContext(ctx).Select("like_count").First(&refreshed, "id = ?", diaryID).Error; err != nil {
		return nil, err
	}

	return &dto.LikeResponse{Liked: liked, LikeCount: refreshed.LikeCount}, nil
}

// ShareURL builds the prefilled tweet intent for an entry. No state is
// touched; the client just opens the URL.
func (s *DiaryService) ShareURL(ctx context.Context, diaryID uuid.UUID) (string, error) {
	var entry models.DiaryEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ? AND is_public = ?", diaryID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrDiaryNotFound
		}
		return "", err
	}

	text := entry.Content
	if runes := []rune(text); len(runes) > shareTextMaxRunes {
		text = string(runes[:shareTextMaxRunes]) + "…"
	}
	text += "\n\n#みんなのにっき"

	diaryURL := strings.TrimSuffix(s.cfg.BaseURL, "/") + "/diary/" + entry.ID.String()
	return "https://twitter.com/intent/tweet?text=" + url.QueryEscape(text) +
		"&url=" + url.QueryEscape(diaryURL), nil
}
