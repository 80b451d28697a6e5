package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/logging"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFollow_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	profiles := NewProfileService(env.rm, logging.Nop{})
	_, a := env.register(t, "a@example.com")
	_, b := env.register(t, "b@example.com")
	ctx := context.Background()

	already, err := profiles.Follow(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, already)

	already, err = profiles.Follow(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, already)

	_, err = env.rm.Followers(nil).Find(ctx, a, b)
	assert.NoError(t, err)

	gone, err := profiles.Unfollow(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, gone)

	gone, err = profiles.Unfollow(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, gone)

	_, err = env.rm.Followers(nil).Find(ctx, a, b)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFollow_Self(t *testing.T) {
	env := newTestEnv(t)
	profiles := NewProfileService(env.rm, logging.Nop{})
	_, a := env.register(t, "self@example.com")

	_, err := profiles.Follow(context.Background(), a, a)
	assert.ErrorIs(t, err, common.ErrInvalidOperation)

	_, err = profiles.Unfollow(context.Background(), a, a)
	assert.ErrorIs(t, err, common.ErrInvalidOperation)
}

func TestFollow_MissingTarget(t *testing.T) {
	env := newTestEnv(t)
	profiles := NewProfileService(env.rm, logging.Nop{})
	_, a := env.register(t, "lonely@example.com")

	_, err := profiles.Follow(context.Background(), a, "0b7e7a4a-1111-4111-8111-111111111111")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetMe(t *testing.T) {
	env := newTestEnv(t)
	profiles := NewProfileService(env.rm, logging.Nop{})
	_, id := env.register(t, "me@example.com")

	p, err := profiles.GetMe(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "me@example.com", p.Email)
	assert.Equal(t, "unverified", p.Verify)
	assert.Equal(t, dob, p.DateOfBirth)

	_, err = profiles.GetMe(context.Background(), "9d1f0b8e-2222-4222-8222-222222222222")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)
	profiles := NewProfileService(env.rm, logging.Nop{})
	_, a := env.register(t, "upd-a@example.com")
	_, b := env.register(t, "upd-b@example.com")
	ctx := context.Background()

	p, err := profiles.UpdateMe(ctx, a, &models.UserPatch{
		Name:     strPtr("Alice A."),
		Bio:      strPtr("gopher"),
		Username: strPtr("alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", p.Name)
	assert.Equal(t, "gopher", p.Bio)
	assert.Equal(t, "alice", p.Username)

	// keeping one's own username is fine
	_, err = profiles.UpdateMe(ctx, a, &models.UserPatch{Username: strPtr("alice")})
	assert.NoError(t, err)

	_, err = profiles.UpdateMe(ctx, b, &models.UserPatch{Username: strPtr("alice")})
	assert.ErrorIs(t, err, common.ErrConflict)

	// credentials and status are not updatable through the profile
	verified := models.Verified
	hash := "x"
	_, err = profiles.UpdateMe(ctx, b, &models.UserPatch{Verify: &verified, PasswordHash: &hash})
	require.NoError(t, err)
	u := env.user(t, b)
	assert.Equal(t, models.Unverified, u.Verify)
	assert.NotEqual(t, "x", u.PasswordHash)
}

func TestGetByUsername(t *testing.T) {
	env := newTestEnv(t)
	profiles := NewProfileService(env.rm, logging.Nop{})
	_, id := env.register(t, "pub@example.com")
	ctx := context.Background()

	_, err := profiles.UpdateMe(ctx, id, &models.UserPatch{Username: strPtr("pubby")})
	require.NoError(t, err)

	p, err := profiles.GetByUsername(ctx, "pubby")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "pubby", p.Username)

	_, err = profiles.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
