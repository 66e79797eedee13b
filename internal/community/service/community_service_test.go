package service

import (
	"context"
	"testing"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/internal/testutil"
	"golang-stock-circle/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallySentiments(t *testing.T) {
	t.Run("no votes", func(t *testing.T) {
		tally, total := TallySentiments(nil)
		assert.Zero(t, total)
		assert.Equal(t, dto.SentimentTally{}, tally)
	})

	t.Run("percentages", func(t *testing.T) {
		tally, total := TallySentiments([]dto.SentimentCount{
			{Sentiment: entity.SentimentBullish, Count: 3},
			{Sentiment: entity.SentimentBearish, Count: 1},
		})
		assert.Equal(t, int64(4), total)
		assert.Equal(t, int64(3), tally.Bullish)
		assert.InDelta(t, 75.0, tally.BullishPercent, 0.001)
		assert.InDelta(t, 25.0, tally.BearishPercent, 0.001)
		assert.Zero(t, tally.NeutralPercent)
	})
}

func TestCommunityService_VoteOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", false)

	post, err := f.community.CreatePost(ctx, alice.ID, dto.CreatePostRequest{Symbol: "tsla", Title: "Deliveries", Content: "Q3 looked fine"})
	require.NoError(t, err)
	assert.Equal(t, "TSLA", post.Symbol)
	assert.Equal(t, "alice", post.AuthorUsername)
	require.NotNil(t, post.Votes)
	assert.Zero(t, post.Votes.Total)

	require.NoError(t, f.community.Vote(ctx, alice.ID, post.ID, entity.SentimentBullish, entity.SentimentBullish))
	summary, err := f.community.CountVotes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.ShortTerm.Bullish)
	assert.InDelta(t, 100.0, summary.ShortTerm.BullishPercent, 0.001)

	require.NoError(t, f.community.Vote(ctx, alice.ID, post.ID, entity.SentimentBearish, entity.SentimentBullish))
	summary, err = f.community.CountVotes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Total)
	assert.Zero(t, summary.ShortTerm.Bullish)
	assert.Equal(t, int64(1), summary.ShortTerm.Bearish)
	assert.Equal(t, int64(1), summary.LongTerm.Bullish)

	err = f.community.Vote(ctx, alice.ID, post.ID, "sideways", entity.SentimentBullish)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	err = f.community.Vote(ctx, alice.ID, 999, entity.SentimentBullish, entity.SentimentBullish)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCommunityService_LikesAndComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", false)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	post, err := f.community.CreatePost(ctx, alice.ID, dto.CreatePostRequest{Symbol: "AMD", Title: "MI300", Content: "thoughts?"})
	require.NoError(t, err)

	liked, err := f.community.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked.AlreadyLiked)
	assert.Equal(t, int64(1), liked.LikeCount)

	liked, err = f.community.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked.AlreadyLiked)
	assert.Equal(t, int64(1), liked.LikeCount)

	_, err = f.community.AddComment(ctx, bob.ID, post.ID, dto.CommentRequest{Content: "first"})
	require.NoError(t, err)
	comment, err := f.community.AddComment(ctx, alice.ID, post.ID, dto.CommentRequest{Content: "second"})
	require.NoError(t, err)
	assert.Equal(t, "alice", comment.AuthorUsername)

	comments, err := f.community.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)

	posts, err := f.community.ListPosts(ctx, dto.ListPostsQuery{Symbol: "amd"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(2), posts[0].CommentCount)
	assert.Equal(t, int64(1), posts[0].LikeCount)

	unliked, err := f.community.Unlike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Zero(t, unliked.LikeCount)

	_, err = f.community.Unlike(ctx, bob.ID, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.ErrorIs(t, f.community.DeleteComment(ctx, bob.ID, comment.ID), apperror.ErrPermission)
	assert.ErrorIs(t, f.community.DeletePost(ctx, bob.ID, post.ID), apperror.ErrPermission)
}

func TestCommunityService_GetPostReportsViewerState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", false)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	post, err := f.community.CreatePost(ctx, alice.ID, dto.CreatePostRequest{Symbol: "NFLX", Title: "Ads tier", Content: "growing"})
	require.NoError(t, err)
	_, err = f.community.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.NoError(t, f.community.Vote(ctx, bob.ID, post.ID, entity.SentimentBearish, entity.SentimentBullish))

	anonymous, err := f.community.GetPost(ctx, 0, post.ID)
	require.NoError(t, err)
	assert.Nil(t, anonymous.Viewer)

	asBob, err := f.community.GetPost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.NotNil(t, asBob.Viewer)
	assert.True(t, asBob.Viewer.Liked)
	assert.Equal(t, entity.SentimentBearish, asBob.Viewer.ShortTermSentiment)
	assert.Equal(t, entity.SentimentBullish, asBob.Viewer.LongTermSentiment)

	asAlice, err := f.community.GetPost(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	require.NotNil(t, asAlice.Viewer)
	assert.False(t, asAlice.Viewer.Liked)
	assert.Empty(t, asAlice.Viewer.ShortTermSentiment)
}

func TestCommunityService_AdminDeletesPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)
	alice := testutil.CreateUser(t, f.db, "alice", false)

	post, err := f.community.CreatePost(ctx, alice.ID, dto.CreatePostRequest{Symbol: "GME", Title: "t", Content: "c"})
	require.NoError(t, err)
	require.NoError(t, f.community.Vote(ctx, alice.ID, post.ID, entity.SentimentNeutral, entity.SentimentNeutral))

	require.NoError(t, f.community.DeletePost(ctx, admin.ID, post.ID))
	_, err = f.community.GetPost(ctx, 0, post.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCommunityService_CreatePostValidation(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice", false)

	_, err := f.community.CreatePost(context.Background(), alice.ID, dto.CreatePostRequest{Symbol: "AAPL", Title: " ", Content: "c"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
