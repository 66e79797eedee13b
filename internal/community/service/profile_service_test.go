package service

import (
	"context"
	"testing"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/testutil"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_FollowGraph(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", false)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	require.NoError(t, f.profiles.Follow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, f.profiles.Follow(ctx, alice.ID, bob.ID), apperror.ErrConflict)
	assert.ErrorIs(t, f.profiles.Follow(ctx, alice.ID, alice.ID), apperror.ErrValidation)
	assert.ErrorIs(t, f.profiles.Follow(ctx, alice.ID, 404), apperror.ErrNotFound)

	profile, err := f.profiles.GetProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.True(t, profile.IsFollowing)
	assert.False(t, profile.IsMutual)

	require.NoError(t, f.profiles.Follow(ctx, bob.ID, alice.ID))
	profile, err = f.profiles.GetProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsMutual)
	assert.Equal(t, int64(1), profile.FollowingCount)

	followers, err := f.profiles.ListFollowers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	require.NoError(t, f.profiles.Unfollow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, f.profiles.Unfollow(ctx, alice.ID, bob.ID), apperror.ErrNotFound)

	following, err := f.profiles.ListFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestProfileService_UpdateAndPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	signup, err := f.auth.Signup(ctx, dto.SignupRequest{Username: "frank", Password: "first-password"})
	require.NoError(t, err)
	id := signup.User.ID

	updated, err := f.profiles.UpdateProfile(ctx, id, dto.UpdateProfileRequest{
		DisplayName: utils.ToPointer("  Frank  "),
		Bio:         utils.ToPointer("value investor"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Frank", updated.DisplayName)
	assert.Equal(t, "value investor", updated.Bio)

	err = f.profiles.ChangePassword(ctx, id, dto.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "second-password"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	err = f.profiles.ChangePassword(ctx, id, dto.ChangePasswordRequest{OldPassword: "first-password", NewPassword: "tiny"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	require.NoError(t, f.profiles.ChangePassword(ctx, id, dto.ChangePasswordRequest{OldPassword: "first-password", NewPassword: "second-password"}))
	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "frank", Password: "second-password"})
	require.NoError(t, err)

	_, err = f.profiles.UpdateProfile(ctx, 999, dto.UpdateProfileRequest{Bio: utils.ToPointer("x")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
