package repository

import (
	"context"
	"testing"
	"time"

	"golang-stock-circle/internal/entity"
	"golang-stock-circle/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", false)
	bob := testutil.CreateUser(t, db, "bob", false)
	carol := testutil.CreateUser(t, db, "carol", false)
	repo := NewMessageRepository(db)

	base := time.Now().Add(-time.Hour)
	send := func(from, to uint, body string, offset time.Duration) {
		require.NoError(t, repo.Create(ctx, &entity.Message{SenderID: from, ReceiverID: to, Body: body, CreatedAt: base.Add(offset)}))
	}
	send(alice.ID, bob.ID, "one", 0)
	send(bob.ID, alice.ID, "two", time.Minute)
	send(alice.ID, bob.ID, "three", 2*time.Minute)
	send(carol.ID, bob.ID, "hey", 3*time.Minute)

	unread, err := repo.CountUnread(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	bySender, err := repo.CountUnreadBySender(ctx, bob.ID)
	require.NoError(t, err)
	counts := map[uint]int64{}
	for _, row := range bySender {
		counts[row.SenderID] = row.Count
	}
	assert.Equal(t, map[uint]int64{alice.ID: 2, carol.ID: 1}, counts)

	updated, err := repo.MarkRead(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err = repo.CountUnread(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	conversation, err := repo.Conversation(ctx, bob.ID, alice.ID, 2)
	require.NoError(t, err)
	require.Len(t, conversation, 2)
	assert.Equal(t, "two", conversation[0].Body)
	assert.Equal(t, "three", conversation[1].Body)
}
