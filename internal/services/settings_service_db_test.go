package services

import (
	"context"
	"testing"

	"github.com/namisapo/minna-diary-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsTypedParsing(t *testing.T) {
	db := testDB(t)
	svc := NewSettingsService(db, newTestCache())
	ctx := context.Background()

	_, err := svc.Set(ctx, "allow_new_registration", "false", "bool")
	require.NoError(t, err)
	_, err = svc.Set(ctx, "max_entries_per_day", "10", "int")
	require.NoError(t, err)
	_, err = svc.Set(ctx, "banner_message", "メンテナンスのお知らせ", "string")
	require.NoError(t, err)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, false, all["allow_new_registration"])
	assert.Equal(t, 10, all["max_entries_per_day"])
	assert.Equal(t, "メンテナンスのお知らせ", all["banner_message"])
}

func TestSettingsBoolDefaultsTrueWhenMissing(t *testing.T) {
	db := testDB(t)
	svc := NewSettingsService(db, newTestCache())
	ctx := context.Background()

	assert.True(t, svc.Bool(ctx, models.SettingAllowAnonymousPosts))

	_, err := svc.Set(ctx, models.SettingAllowAnonymousPosts, "false", "bool")
	require.NoError(t, err)
	assert.False(t, svc.Bool(ctx, models.SettingAllowAnonymousPosts))
}

func TestSettingsUpsert(t *testing.T) {
	db := testDB(t)
	svc := NewSettingsService(db, newTestCache())
	ctx := context.Background()

	_, err := svc.Set(ctx, "maintenance_mode", "", "bool")
	assert.ErrorIs(t, err, ErrSettingValueRequired)

	first, err := svc.Set(ctx, "maintenance_mode", "true", "bool")
	require.NoError(t, err)

	second, err := svc.Set(ctx, "maintenance_mode", "false", "bool")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.SystemSetting{}).Where("key = ?", "maintenance_mode").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewSettingsService(db, newTestCache())

	require.NoError(t, svc.SeedDefaults())
	require.NoError(t, svc.SeedDefaults())

	var count int64
	db.Model(&models.SystemSetting{}).Count(&count)
	assert.Equal(t, int64(3), count)
}
