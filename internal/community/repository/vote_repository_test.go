package repository

import (
	"context"
	"testing"

	"golang-stock-circle/internal/entity"
	"golang-stock-circle/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestVoteRepository_Upsert(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "alice", false)
	post := &entity.Post{AuthorID: user.ID, Symbol: "TSLA", Title: "t", Content: "c"}
	require.NoError(t, NewPostRepository(db).Create(ctx, post))
	repo := NewVoteRepository(db)

	sequence := []entity.Sentiment{entity.SentimentBullish, entity.SentimentNeutral, entity.SentimentBearish}
	for _, s := range sequence {
		require.NoError(t, repo.Upsert(ctx, &entity.PostVote{
			PostID: post.ID, UserID: user.ID, ShortTermSentiment: s, LongTermSentiment: entity.SentimentBullish,
		}))
	}

	var rows int64
	require.NoError(t, db.Model(&entity.PostVote{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	vote, err := repo.FindByPostAndUser(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SentimentBearish, vote.ShortTermSentiment)

	short, err := repo.CountShortTerm(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, short, 1)
	assert.Equal(t, entity.SentimentBearish, short[0].Sentiment)
	assert.Equal(t, int64(1), short[0].Count)

	long, err := repo.CountLongTerm(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, long, 1)
	assert.Equal(t, entity.SentimentBullish, long[0].Sentiment)
}

func TestLikeRepository_Duplicate(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "alice", false)
	post := &entity.Post{AuthorID: user.ID, Symbol: "TSLA", Title: "t", Content: "c"}
	require.NoError(t, NewPostRepository(db).Create(ctx, post))
	repo := NewLikeRepository(db)

	require.NoError(t, repo.Create(ctx, &entity.Like{PostID: post.ID, UserID: user.ID}))
	err := repo.Create(ctx, &entity.Like{PostID: post.ID, UserID: user.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	counts, err := repo.CountByPosts(ctx, []uint{post.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[post.ID])

	n, err := repo.Delete(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "alice", false)
	posts := NewPostRepository(db)
	post := &entity.Post{AuthorID: user.ID, Symbol: "AMD", Title: "t", Content: "c"}
	require.NoError(t, posts.Create(ctx, post))
	require.NoError(t, NewCommentRepository(db).Create(ctx, &entity.Comment{PostID: post.ID, AuthorID: user.ID, Content: "hi"}))
	require.NoError(t, NewLikeRepository(db).Create(ctx, &entity.Like{PostID: post.ID, UserID: user.ID}))

	require.NoError(t, posts.Delete(ctx, post.ID))

	for _, model := range []interface{}{&entity.Post{}, &entity.Comment{}, &entity.Like{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}
	assert.ErrorIs(t, posts.Delete(ctx, post.ID), gorm.ErrRecordNotFound)
}
