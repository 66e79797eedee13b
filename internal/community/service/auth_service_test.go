package service

import (
	"context"
	"testing"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Signup(ctx, dto.SignupRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.DisplayName)
	assert.False(t, resp.User.IsAdmin)

	sess, err := f.auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, sess.UserID)

	login, err := f.auth.Login(ctx, dto.LoginRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "alice", Password: "wrong password"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "correct horse"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	me, err := f.auth.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestAuthService_SignupValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.SignupRequest
		want error
	}{
		{name: "short username", req: dto.SignupRequest{Username: "ab", Password: "longenough"}, want: apperror.ErrValidation},
		{name: "bad characters", req: dto.SignupRequest{Username: "bad name!", Password: "longenough"}, want: apperror.ErrValidation},
		{name: "short password", req: dto.SignupRequest{Username: "carol", Password: "short"}, want: apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Signup(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.auth.Signup(ctx, dto.SignupRequest{Username: "dave", Password: "longenough"})
	require.NoError(t, err)
	_, err = f.auth.Signup(ctx, dto.SignupRequest{Username: "dave", Password: "longenough"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = f.auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	// a valid token for a user that no longer exists
	token, _, err := testSessions().Issue(999)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAuthService_SetAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Signup(ctx, dto.SignupRequest{Username: "erin", Password: "longenough"})
	require.NoError(t, err)

	require.NoError(t, f.auth.SetAdmin(ctx, "erin", true))
	me, err := f.auth.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.True(t, me.IsAdmin)

	assert.ErrorIs(t, f.auth.SetAdmin(ctx, "ghost", true), apperror.ErrNotFound)
}
