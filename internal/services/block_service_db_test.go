package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockToggleRoundTrip(t *testing.T) {
	db := testDB(t)
	svc := NewBlockService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "アリス")
	bob := createTestUser(t, db, "ボブ")

	blocked, err := svc.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	got, err := svc.IsBlocked(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, got)

	// Storage is one-directional.
	got, err = svc.IsBlocked(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, got)

	// Second toggle restores the original state.
	blocked, err = svc.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, blocked)

	got, err = svc.IsBlocked(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestBlockRejectsSelfAndDuplicates(t *testing.T) {
	db := testDB(t)
	svc := NewBlockService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "アリス")
	bob := createTestUser(t, db, "ボブ")

	assert.ErrorIs(t, svc.Block(ctx, alice.ID, alice.ID), ErrSelfBlock)

	require.NoError(t, svc.Block(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, svc.Block(ctx, alice.ID, bob.ID), ErrAlreadyBlocked)

	users, err := svc.ListBlocked(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, bob.ID, users[0].ID)
}
