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

func TestSubmissionRepository_Approve(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "admin", true)
	user := testutil.CreateUser(t, db, "alice", false)
	repo := NewSubmissionRepository(db)

	submission := &entity.WatchlistSubmission{
		Symbol:      "NVDA",
		CompanyName: "NVIDIA",
		Sector:      "Technology",
		Term:        entity.TermLong,
		Status:      entity.SubmissionPending,
		SubmittedBy: user.ID,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, submission))

	review := Review{SubmissionID: submission.ID, ReviewerID: admin.ID, Notes: "solid", ReviewedAt: time.Now()}
	entry, err := repo.Approve(ctx, review)
	require.NoError(t, err)
	assert.Equal(t, "NVDA", entry.Symbol)
	assert.Equal(t, admin.ID, entry.AddedBy)
	require.NotNil(t, entry.SubmissionID)
	assert.Equal(t, submission.ID, *entry.SubmissionID)

	stored, err := repo.FindByID(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionApproved, stored.Status)
	assert.Equal(t, "solid", stored.AdminNotes)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, admin.ID, *stored.ReviewedBy)

	_, err = repo.Approve(ctx, review)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.ErrorIs(t, repo.Deny(ctx, review), ErrNotPending)

	var entries int64
	require.NoError(t, db.Model(&entity.WatchlistEntry{}).Count(&entries).Error)
	assert.Equal(t, int64(1), entries)
}

func TestSubmissionRepository_DenyAndList(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "admin", true)
	alice := testutil.CreateUser(t, db, "alice", false)
	bob := testutil.CreateUser(t, db, "bob", false)
	repo := NewSubmissionRepository(db)

	base := time.Now().Add(-time.Hour)
	for i, by := range []uint{alice.ID, bob.ID, alice.ID} {
		require.NoError(t, repo.Create(ctx, &entity.WatchlistSubmission{
			Symbol: "SYM", CompanyName: "Co", Sector: "Energy", Term: entity.TermShort,
			Status: entity.SubmissionPending, SubmittedBy: by, SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.List(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].SubmittedAt.After(all[2].SubmittedAt))

	require.NoError(t, repo.Deny(ctx, Review{SubmissionID: all[0].ID, ReviewerID: admin.ID, ReviewedAt: time.Now()}))

	pending, err := repo.List(ctx, entity.SubmissionPending, nil)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	mine, err := repo.List(ctx, "", &alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	var entries int64
	require.NoError(t, db.Model(&entity.WatchlistEntry{}).Count(&entries).Error)
	assert.Zero(t, entries)
}
