package services

import (
	"context"
	"testing"

	"github.com/namisapo/minna-diary-backend/internal/config"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleAccountResolution(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, &config.Config{}, nil)
	ctx := context.Background()

	claims := &GoogleJWTClaims{
		Sub:     "g-sub-123",
		Email:   "hanako@example.com",
		Name:    "花子",
		Picture: "https://lh3.googleusercontent.com/a/photo.jpg",
	}

	// First sign-in lazily creates the account.
	created, err := svc.findOrCreateGoogleUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "hanako@example.com", created.Email)
	assert.Equal(t, "花子", created.DisplayName)
	assert.Equal(t, "google", created.AuthProvider)
	require.NotNil(t, created.GoogleUserID)
	assert.Equal(t, "g-sub-123", *created.GoogleUserID)

	// Second sign-in resolves to the same row, not a duplicate.
	again, err := svc.findOrCreateGoogleUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	var count int64
	db.Model(&models.User{}).Where("email = ?", "hanako@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGoogleSignInLinksExistingEmailAccount(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, &config.Config{}, nil)
	ctx := context.Background()

	existing := createTestUser(t, db, "太郎")

	claims := &GoogleJWTClaims{
		Sub:   "g-sub-456",
		Email: existing.Email,
		Name:  "Taro G",
	}

	linked, err := svc.findOrCreateGoogleUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)
	// The email account keeps its profile but gains the Google subject.
	assert.Equal(t, "太郎", linked.DisplayName)
	assert.Equal(t, "google", linked.AuthProvider)
	require.NotNil(t, linked.GoogleUserID)
	assert.Equal(t, "g-sub-456", *linked.GoogleUserID)
}

func TestGoogleSignInWithoutEmailClaim(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, &config.Config{}, nil)
	ctx := context.Background()

	user, err := svc.findOrCreateGoogleUser(ctx, &GoogleJWTClaims{Sub: "g-sub-789"})
	require.NoError(t, err)
	assert.Equal(t, "g-sub-789@users.noreply.google.com", user.Email)
	assert.Equal(t, "g-sub-789", user.DisplayName)
}
