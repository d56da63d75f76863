package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/config"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiaryService(t *testing.T) (*DiaryService, *SettingsService) {
	t.Helper()
	db := testDB(t)
	c := newTestCache()
	cfg := &config.Config{BaseURL: "https://minna-nikki.app"}
	settings := NewSettingsService(db, c)
	svc := NewDiaryService(db, cfg, settings, NewModerationService(db), c)
	return svc, settings
}

func TestCreateEntryAppearsAtFeedHead(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()
	author := createTestUser(t, svc.db, "太郎")

	older, err := svc.Create(ctx, author, &dto.CreateDiaryRequest{
		Content: "昨日の出来事", IsPublic: true,
	})
	require.NoError(t, err)

	emotion := "sadness"
	created, err := svc.Create(ctx, author, &dto.CreateDiaryRequest{
		Content: "今日は疲れた", Emotion: &emotion, IsPublic: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "悲しみ", created.EmotionLabel)

	feed, err := svc.GetFeed(ctx, uuid.Nil, FeedFilters{})
	require.NoError(t, err)
	require.Len(t, feed.Entries, 2)
	assert.Equal(t, created.ID, feed.Entries[0].ID)
	assert.Equal(t, older.ID, feed.Entries[1].ID)
	assert.Equal(t, "太郎", feed.Entries[0].DisplayName)
	assert.Equal(t, int64(2), feed.TotalUnfiltered)
}

func TestFeedFiltersAreConjunctive(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()
	author := createTestUser(t, svc.db, "花子")

	sadness, joy := "sadness", "joy"
	_, err := svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "疲れた一日だった", Emotion: &sadness, IsPublic: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "疲れたけど嬉しい", Emotion: &joy, IsPublic: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "楽しかった", Emotion: &joy, IsPublic: true})
	require.NoError(t, err)

	feed, err := svc.GetFeed(ctx, uuid.Nil, FeedFilters{Keyword: "疲れた", Emotion: "joy"})
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "疲れたけど嬉しい", feed.Entries[0].Content)

	// total counts the filtered set, total_unfiltered the whole board.
	assert.Equal(t, int64(1), feed.Total)
	assert.Equal(t, int64(3), feed.TotalUnfiltered)

	_, err = svc.GetFeed(ctx, uuid.Nil, FeedFilters{Emotion: "nonsense"})
	assert.ErrorIs(t, err, ErrInvalidEmotion)
}

func TestKeywordFilterMatchesLiterally(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()
	author := createTestUser(t, svc.db, "花子")

	_, err := svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "進捗100%達成した", IsPublic: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "ふつうの日記", IsPublic: true})
	require.NoError(t, err)

	// "%" is a literal character to search for, not a wildcard.
	feed, err := svc.GetFeed(ctx, uuid.Nil, FeedFilters{Keyword: "%"})
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "進捗100%達成した", feed.Entries[0].Content)

	feed, err = svc.GetFeed(ctx, uuid.Nil, FeedFilters{Keyword: "100%達成"})
	require.NoError(t, err)
	assert.Len(t, feed.Entries, 1)

	// "_" must not act as a single-character wildcard either.
	feed, err = svc.GetFeed(ctx, uuid.Nil, FeedFilters{Keyword: "_"})
	require.NoError(t, err)
	assert.Empty(t, feed.Entries)
}

func TestUserEntriesListing(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()

	author := createTestUser(t, svc.db, "旧ハンドル")
	other := createTestUser(t, svc.db, "別の人")

	_, err := svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "名前つきの投稿", IsPublic: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "匿名の投稿", IsAnonymous: true, IsPublic: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "非公開の下書き", IsPublic: false})
	require.NoError(t, err)
	_, err = svc.Create(ctx, other, &dto.CreateDiaryRequest{Content: "他人の投稿", IsPublic: true})
	require.NoError(t, err)

	// Rename after posting; matching is by user id, so old posts still
	// belong to the page.
	require.NoError(t, svc.db.Model(author).Update("display_name", "新ハンドル").Error)

	page, err := svc.UserEntries(ctx, uuid.Nil, author.ID, 0, DefaultPageSize)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.False(t, page.HasMore)

	// Newest first: the anonymous post leads, shown as 匿名; the named
	// post carries the renamed profile.
	assert.Equal(t, "匿名の投稿", page.Entries[0].Content)
	assert.Equal(t, "匿名", page.Entries[0].DisplayName)
	assert.Equal(t, "名前つきの投稿", page.Entries[1].Content)
	assert.Equal(t, "新ハンドル", page.Entries[1].DisplayName)

	// A viewer who blocked the author sees an empty page.
	blocks := NewBlockService(svc.db)
	viewer := createTestUser(t, svc.db, "見る人")
	require.NoError(t, blocks.Block(ctx, viewer.ID, author.ID))

	page, err = svc.UserEntries(ctx, viewer.ID, author.ID, 0, DefaultPageSize)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
}

func TestFeedPagination(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()
	author := createTestUser(t, svc.db, "次郎")

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "エントリ", IsPublic: true})
		require.NoError(t, err)
	}

	page0, err := svc.GetFeed(ctx, uuid.Nil, FeedFilters{Page: 0, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page0.Entries, 2)
	assert.True(t, page0.HasMore)

	page2, err := svc.GetFeed(ctx, uuid.Nil, FeedFilters{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page2.Entries, 1)
	assert.False(t, page2.HasMore)
}

func TestBlockHidesBothDirections(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()
	blocks := NewBlockService(svc.db)

	alice := createTestUser(t, svc.db, "アリス")
	bob := createTestUser(t, svc.db, "ボブ")

	_, err := svc.Create(ctx, alice, &dto.CreateDiaryRequest{Content: "アリスの日記", IsPublic: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, &dto.CreateDiaryRequest{Content: "ボブの日記", IsPublic: true})
	require.NoError(t, err)

	require.NoError(t, blocks.Block(ctx, alice.ID, bob.ID))

	// Blocker no longer sees the blocked author.
	feed, err := svc.GetFeed(ctx, alice.ID, FeedFilters{})
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "アリスの日記", feed.Entries[0].Content)

	// The blocked user stops seeing the blocker too.
	feed, err = svc.GetFeed(ctx, bob.ID, FeedFilters{})
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "ボブの日記", feed.Entries[0].Content)

	// Anonymous viewers see everything.
	feed, err = svc.GetFeed(ctx, uuid.Nil, FeedFilters{})
	require.NoError(t, err)
	assert.Len(t, feed.Entries, 2)

	// Unblock restores visibility.
	require.NoError(t, blocks.Unblock(ctx, alice.ID, bob.ID))
	feed, err = svc.GetFeed(ctx, alice.ID, FeedFilters{})
	require.NoError(t, err)
	assert.Len(t, feed.Entries, 2)
}

func TestToggleLike(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()

	author := createTestUser(t, svc.db, "作者")
	viewer := createTestUser(t, svc.db, "読者")

	entry, err := svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "いいねテスト", IsPublic: true})
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, viewer, entry.ID)
	require.NoError(t, err)
	assert.True(t, liked.Liked)
	assert.Equal(t, 1, liked.LikeCount)

	// liked_by_viewer resolves per viewer in the feed query.
	feed, err := svc.GetFeed(ctx, viewer.ID, FeedFilters{})
	require.NoError(t, err)
	assert.True(t, feed.Entries[0].LikedByViewer)
	feed, err = svc.GetFeed(ctx, author.ID, FeedFilters{})
	require.NoError(t, err)
	assert.False(t, feed.Entries[0].LikedByViewer)

	unliked, err := svc.ToggleLike(ctx, viewer, entry.ID)
	require.NoError(t, err)
	assert.False(t, unliked.Liked)
	assert.Equal(t, 0, unliked.LikeCount)

	// Only one like row can ever exist per (entry, user).
	var count int64
	svc.db.Model(&models.Like{}).Where("diary_id = ?", entry.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAnonymousPostingGate(t *testing.T) {
	svc, settings := newDiaryService(t)
	ctx := context.Background()
	author := createTestUser(t, svc.db, "匿名希望")

	_, err := settings.Set(ctx, models.SettingAllowAnonymousPosts, "false", "bool")
	require.NoError(t, err)

	_, err = svc.Create(ctx, author, &dto.CreateDiaryRequest{
		Content: "匿名で書きたい", IsAnonymous: true, IsPublic: true,
	})
	assert.ErrorIs(t, err, ErrAnonymousDisabled)

	// Named posting is unaffected.
	resp, err := svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "名前つき", IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, "匿名希望", resp.DisplayName)

	_, err = settings.Set(ctx, models.SettingAllowAnonymousPosts, "true", "bool")
	require.NoError(t, err)

	resp, err = svc.Create(ctx, author, &dto.CreateDiaryRequest{
		Content: "匿名で書けた", IsAnonymous: true, IsPublic: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "匿名", resp.DisplayName)
}

func TestUpdateAndDeletePermissions(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()

	owner := createTestUser(t, svc.db, "持ち主")
	stranger := createTestUser(t, svc.db, "他人")
	admin := createTestUser(t, svc.db, "管理者")
	require.NoError(t, svc.db.Model(admin).Update("role", "admin").Error)
	admin.Role = "admin"

	entry, err := svc.Create(ctx, owner, &dto.CreateDiaryRequest{Content: "元の内容", IsPublic: true})
	require.NoError(t, err)

	newContent := "書き直した"
	_, err = svc.Update(ctx, stranger, entry.ID, &dto.UpdateDiaryRequest{Content: &newContent})
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := svc.Update(ctx, owner, entry.ID, &dto.UpdateDiaryRequest{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, entry.ID, updated.ID)
	// The update response is the same card shape the feed serves.
	assert.Equal(t, "書き直した", updated.Content)
	assert.Equal(t, "持ち主", updated.DisplayName)

	// Making the entry private must not hide it from its owner's update
	// response.
	private := false
	updated, err = svc.Update(ctx, owner, entry.ID, &dto.UpdateDiaryRequest{IsPublic: &private})
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)

	assert.ErrorIs(t, svc.Delete(ctx, stranger, entry.ID), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, admin, entry.ID))

	_, err = svc.Get(ctx, uuid.Nil, entry.ID)
	assert.ErrorIs(t, err, ErrDiaryNotFound)
}

func TestSilencedAccountCannotWrite(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()

	silenced := createTestUser(t, svc.db, "制限中")
	require.NoError(t, svc.db.Model(silenced).Update("is_blocked", true).Error)
	silenced.IsBlocked = true

	_, err := svc.Create(ctx, silenced, &dto.CreateDiaryRequest{Content: "書けないはず", IsPublic: true})
	assert.ErrorIs(t, err, ErrAccountSilenced)
}

func TestShareURL(t *testing.T) {
	svc, _ := newDiaryService(t)
	ctx := context.Background()
	author := createTestUser(t, svc.db, "共有")

	entry, err := svc.Create(ctx, author, &dto.CreateDiaryRequest{Content: "シェアする日記", IsPublic: true})
	require.NoError(t, err)

	url, err := svc.ShareURL(ctx, entry.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "https://twitter.com/intent/tweet?text=")
	assert.Contains(t, url, entry.ID.String())
}
