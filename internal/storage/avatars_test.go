package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExtensionFor(t *testing.T) {
	ext, err := ExtensionFor("image/jpeg")
	assert.NoError(t, err)
	assert.Equal(t, "jpg", ext)

	ext, err = ExtensionFor("image/png")
	assert.NoError(t, err)
	assert.Equal(t, "png", ext)

	_, err = ExtensionFor("image/gif")
	assert.ErrorIs(t, err, ErrAvatarBadType)

	_, err = ExtensionFor("application/octet-stream")
	assert.ErrorIs(t, err, ErrAvatarBadType)
}

func TestAvatarKey(t *testing.T) {
	id := uuid.MustParse("8a3f5c1e-0000-4000-8000-000000000001")
	assert.Equal(t, "avatars/8a3f5c1e-0000-4000-8000-000000000001.jpg", avatarKey(id, "jpg"))
}

func TestUploadRejectsBeforeTouchingStorage(t *testing.T) {
	// Size and type validation happen before any network call, so a store
	// with no client is fine here.
	store := &AvatarStore{bucket: "avatars", publicURL: "https://cdn.example/avatars"}

	_, err := store.Upload(context.Background(), uuid.New(), "image/jpeg", MaxAvatarSize+1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrAvatarTooLarge)

	_, err = store.Upload(context.Background(), uuid.New(), "image/webp", 100, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrAvatarBadType)
}
