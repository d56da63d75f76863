package services

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/cache"
	"github.com/namisapo/minna-diary-backend/internal/config"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB connects to the database named by TEST_DATABASE_DSN and resets
// the tables. Tests that need it are skipped when the variable is unset.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping database tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.DiaryEntry{},
		&models.Comment{},
		&models.Like{},
		&models.UserBlock{},
		&models.SystemSetting{},
		&models.RefreshToken{},
		&models.Report{},
	))

	for _, table := range []string{
		"likes", "comments", "diary_entries", "user_blocks",
		"refresh_tokens", "reports", "system_settings", "users",
	} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	return db
}

func newTestCache() *cache.Cache {
	// No REDIS_HOST: a no-op cache.
	return cache.New(&config.Config{})
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{
		ID:          uuid.New(),
		Email:       uuid.NewString() + "@example.com",
		Password:    "x",
		DisplayName: name,
		Role:        "user",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}
