package service

import (
	"context"
	"testing"

	"golang-stock-circle/internal/testutil"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagingService_CanMessageIsSymmetric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", false)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	check := func(want bool) {
		t.Helper()
		ab, err := f.messaging.CanMessage(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		ba, err := f.messaging.CanMessage(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, want, ab)
		assert.Equal(t, ab, ba)
	}

	check(false)
	testutil.Follow(t, f.db, alice.ID, bob.ID)
	check(false)
	testutil.Follow(t, f.db, bob.ID, alice.ID)
	check(true)
}

func TestMessagingService_Send(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", false)
	bob := testutil.CreateUser(t, f.db, "bob", false)
	testutil.Follow(t, f.db, alice.ID, bob.ID)

	_, err := f.messaging.Send(ctx, alice.ID, bob.ID, "hi")
	assert.ErrorIs(t, err, apperror.ErrNotMutual)

	testutil.Follow(t, f.db, bob.ID, alice.ID)

	_, err = f.messaging.Send(ctx, alice.ID, bob.ID, "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	msg, err := f.messaging.Send(ctx, alice.ID, bob.ID, "hi bob")
	require.NoError(t, err)
	assert.False(t, msg.Read)
	_, err = f.messaging.Send(ctx, alice.ID, bob.ID, "you there?")
	require.NoError(t, err)

	events := f.publisher.ofType(common.EventMessageSent)
	require.Len(t, events, 2)
	assert.Equal(t, bob.ID, events[0].RecipientID)

	unread, err := f.messaging.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread.Total)
	assert.Equal(t, int64(2), unread.BySender[alice.ID])

	n, err := f.messaging.MarkRead(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = f.messaging.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, unread.Total)

	conversation, err := f.messaging.Conversation(ctx, bob.ID, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, conversation, 2)
	assert.Equal(t, "hi bob", conversation[0].Body)
	assert.True(t, conversation[0].Read)
}

func TestMessagingService_UnknownReceiver(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice", false)

	_, err := f.messaging.Send(context.Background(), alice.ID, 404, "hello")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
