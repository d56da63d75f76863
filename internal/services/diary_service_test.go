package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestResolveEntryName(t *testing.T) {
	tests := []struct {
		name     string
		nickname *string
		current  *string
		want     string
	}{
		{"anonymous post ignores profile", nil, strPtr("花子"), "匿名"},
		{"empty snapshot is anonymous", strPtr(""), strPtr("花子"), "匿名"},
		{"current name wins over snapshot", strPtr("旧ハンドル"), strPtr("新ハンドル"), "新ハンドル"},
		{"deleted author falls back to snapshot", strPtr("旧ハンドル"), nil, "旧ハンドル"},
		{"empty current falls back to snapshot", strPtr("旧ハンドル"), strPtr(""), "旧ハンドル"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveEntryName(tt.nickname, tt.current))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
	assert.Equal(t, "疲れた", escapeLike("疲れた"))
}

func TestFeedFiltersNormalize(t *testing.T) {
	f := FeedFilters{Page: -3, Limit: 0}
	f.normalize()
	assert.Equal(t, 0, f.Page)
	assert.Equal(t, DefaultPageSize, f.Limit)

	f = FeedFilters{Limit: 5000}
	f.normalize()
	assert.Equal(t, MaxPageSize, f.Limit)

	f = FeedFilters{Page: 2, Limit: 10}
	f.normalize()
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 10, f.Limit)
}

func TestFeedFiltersActive(t *testing.T) {
	assert.False(t, (&FeedFilters{Page: 3, Limit: 50}).Active())
	assert.True(t, (&FeedFilters{Keyword: "疲れた"}).Active())
	assert.True(t, (&FeedFilters{Author: "花子"}).Active())
	assert.True(t, (&FeedFilters{Emotion: "sadness"}).Active())

	now := time.Now()
	assert.True(t, (&FeedFilters{DateFrom: &now}).Active())
	assert.True(t, (&FeedFilters{DateTo: &now}).Active())

	// Whitespace-only values are not filters.
	assert.False(t, (&FeedFilters{Keyword: "   "}).Active())
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	ts := time.Date(2025, 6, 15, 14, 30, 45, 0, loc)

	start := DayStart(ts, loc)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), start)

	end := DayEnd(ts, loc)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())
	assert.True(t, end.Before(time.Date(2025, 6, 16, 0, 0, 0, 0, loc)))
}

func TestCanModify(t *testing.T) {
	ownerID := uuid.New()
	entry := &models.DiaryEntry{ID: uuid.New(), UserID: &ownerID}

	owner := &models.User{ID: ownerID, Role: "user"}
	stranger := &models.User{ID: uuid.New(), Role: "user"}
	admin := &models.User{ID: uuid.New(), Role: "admin"}

	assert.True(t, CanModify(entry, owner))
	assert.False(t, CanModify(entry, stranger))
	assert.True(t, CanModify(entry, admin))
	assert.False(t, CanModify(entry, nil))

	// Anonymized entries (deleted author) only admins can touch.
	orphan := &models.DiaryEntry{ID: uuid.New(), UserID: nil}
	assert.False(t, CanModify(orphan, owner))
	assert.True(t, CanModify(orphan, admin))
}

func TestFeedRowToResponse(t *testing.T) {
	emotion := "sadness"
	row := feedRow{
		DiaryEntry: models.DiaryEntry{
			ID:       uuid.New(),
			Nickname: strPtr("太郎"),
			Content:  "今日は疲れた",
			Emotion:  &emotion,
			IsPublic: true,
		},
		AuthorDisplayName: strPtr("太郎"),
		AuthorAvatarURL:   strPtr("https://cdn.example/avatars/x.jpg"),
		LikedByViewer:     true,
	}

	resp := row.toResponse()
	assert.Equal(t, "太郎", resp.DisplayName)
	assert.Equal(t, "悲しみ", resp.EmotionLabel)
	assert.Equal(t, "https://cdn.example/avatars/x.jpg", resp.AvatarURL)
	assert.True(t, resp.LikedByViewer)

	// Anonymous rows hide the avatar even when the author has one.
	row.Nickname = nil
	resp = row.toResponse()
	assert.Equal(t, "匿名", resp.DisplayName)
	assert.Empty(t, resp.AvatarURL)
}
