package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, expiresAt, err := m.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	s, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), s.UserID)
	assert.WithinDuration(t, expiresAt, s.ExpiresAt, time.Second)
	assert.True(t, s.Valid(time.Now()))
}

func TestManager_Parse(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, _, err := m.Issue(1)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewManager("other", time.Hour).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := &manager{secret: []byte("secret"), ttl: time.Minute, now: func() time.Time {
			return time.Now().Add(-2 * time.Hour)
		}}
		old, _, err := expired.Issue(1)
		require.NoError(t, err)

		_, err = m.Parse(old)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), Session{UserID: 3, ExpiresAt: time.Now().Add(time.Minute)})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, uint(3), s.UserID)
}
