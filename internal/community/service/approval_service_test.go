package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/internal/testutil"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/common"
	"golang-stock-circle/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nvdaDraft() dto.SubmissionRequest {
	return dto.SubmissionRequest{
		Symbol:      " nvda ",
		CompanyName: "NVIDIA",
		Sector:      "Technology",
		Term:        entity.TermLong,
	}
}

func TestApprovalService_ApproveFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)
	alice := testutil.CreateUser(t, f.db, "alice", false)

	submission, err := f.approval.Submit(ctx, alice.ID, nvdaDraft())
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionPending, submission.Status)
	assert.Equal(t, "NVDA", submission.Symbol)
	require.Eventually(t, func() bool { return len(f.notifier.sent()) == 1 }, time.Second, 10*time.Millisecond)

	entry, err := f.approval.Approve(ctx, submission.ID, admin.ID, "strong AI demand")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", entry.Symbol)
	assert.Equal(t, entity.TermLong, entry.Term)

	grouped, err := f.watchlist.GetGrouped(ctx)
	require.NoError(t, err)
	require.Contains(t, grouped, "Technology")
	require.Len(t, grouped["Technology"].Long, 1)
	assert.Equal(t, "NVDA", grouped["Technology"].Long[0].Symbol)
	assert.Empty(t, grouped["Technology"].Short)

	events := f.publisher.ofType(common.EventSubmissionReviewed)
	require.Len(t, events, 1)
	assert.Equal(t, alice.ID, events[0].RecipientID)
	var reviewed dto.ReviewedEvent
	require.NoError(t, json.Unmarshal(events[0].Payload, &reviewed))
	assert.Equal(t, entity.SubmissionApproved, reviewed.Status)

	_, err = f.approval.Approve(ctx, submission.ID, admin.ID, "")
	assert.ErrorIs(t, err, apperror.ErrConflict)
	_, err = f.approval.Deny(ctx, submission.ID, admin.ID, "")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	entries, err := f.watchlist.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// overtakenSubmissions reports that another reviewer changed the status
// between the pending check and the conditional update.
type overtakenSubmissions struct {
	repository.SubmissionRepository
}

func (overtakenSubmissions) Approve(context.Context, repository.Review) (*entity.WatchlistEntry, error) {
	return nil, repository.ErrNotPending
}

func (overtakenSubmissions) Deny(context.Context, repository.Review) error {
	return repository.ErrNotPending
}

func TestApprovalService_LostReviewRaceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)
	alice := testutil.CreateUser(t, f.db, "alice", false)

	submission, err := f.approval.Submit(ctx, alice.ID, nvdaDraft())
	require.NoError(t, err)

	approval := NewApprovalService(overtakenSubmissions{f.submissions}, f.users, f.watchlist, f.publisher, f.notifier, logger.NewNop())

	_, err = approval.Approve(ctx, submission.ID, admin.ID, "")
	assert.ErrorIs(t, err, apperror.ErrConflict)
	_, err = approval.Deny(ctx, submission.ID, admin.ID, "")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	assert.Empty(t, f.publisher.ofType(common.EventSubmissionReviewed))
	assert.Empty(t, f.publisher.ofType(common.EventWatchlistUpdated))

	entries, err := f.watchlist.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	stored, err := f.submissions.FindByID(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionPending, stored.Status)
}

func TestApprovalService_Deny(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)
	alice := testutil.CreateUser(t, f.db, "alice", false)

	submission, err := f.approval.Submit(ctx, alice.ID, nvdaDraft())
	require.NoError(t, err)

	denied, err := f.approval.Deny(ctx, submission.ID, admin.ID, "too expensive")
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionDenied, denied.Status)
	assert.Equal(t, "too expensive", denied.AdminNotes)

	_, err = f.approval.Approve(ctx, submission.ID, admin.ID, "")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	entries, err := f.watchlist.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApprovalService_PreconditionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)
	alice := testutil.CreateUser(t, f.db, "alice", false)

	// a non-admin is rejected before the submission is even looked up
	_, err := f.approval.Approve(ctx, 999, alice.ID, "")
	assert.ErrorIs(t, err, apperror.ErrPermission)
	_, err = f.approval.Deny(ctx, 999, 12345, "")
	assert.ErrorIs(t, err, apperror.ErrPermission)

	_, err = f.approval.Approve(ctx, 999, admin.ID, "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestApprovalService_SubmitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", false)

	cases := map[string]func(*dto.SubmissionRequest){
		"missing symbol":  func(r *dto.SubmissionRequest) { r.Symbol = "  " },
		"missing company": func(r *dto.SubmissionRequest) { r.CompanyName = "" },
		"missing sector":  func(r *dto.SubmissionRequest) { r.Sector = "" },
		"bad term":        func(r *dto.SubmissionRequest) { r.Term = "medium" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := nvdaDraft()
			mutate(&req)
			_, err := f.approval.Submit(ctx, alice.ID, req)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestApprovalService_ListSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)
	alice := testutil.CreateUser(t, f.db, "alice", false)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	_, err := f.approval.Submit(ctx, alice.ID, nvdaDraft())
	require.NoError(t, err)
	_, err = f.approval.Submit(ctx, bob.ID, nvdaDraft())
	require.NoError(t, err)

	all, err := f.approval.ListSubmissions(ctx, admin.ID, dto.SubmissionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.approval.ListSubmissions(ctx, alice.ID, dto.SubmissionFilter{Status: entity.SubmissionPending})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, alice.ID, own[0].SubmittedBy)

	_, err = f.approval.ListSubmissions(ctx, alice.ID, dto.SubmissionFilter{Status: "weird"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
