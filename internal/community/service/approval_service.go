package service

import (
	"context"
	"errors"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/common"
	"golang-stock-circle/pkg/logger"
	"golang-stock-circle/pkg/telegram"
	"golang-stock-circle/pkg/utils"
)

// ApprovalService runs the submission review workflow.
type ApprovalService interface {
	Submit(ctx context.Context, submitterID uint, req dto.SubmissionRequest) (*entity.WatchlistSubmission, error)
	Approve(ctx context.Context, submissionID, reviewerID uint, notes string) (*entity.WatchlistEntry, error)
	Deny(ctx context.Context, submissionID, reviewerID uint, notes string) (*entity.WatchlistSubmission, error)
	// ListSubmissions returns every submission to admins and only their own to other users.
	ListSubmissions(ctx context.Context, userID uint, filter dto.SubmissionFilter) ([]entity.WatchlistSubmission, error)
}

func NewApprovalService(
	submissions repository.SubmissionRepository,
	users repository.UserRepository,
	watchlist WatchlistService,
	publisher repository.EventPublisher,
	notifier telegram.Notifier,
	log *logger.Logger,
) ApprovalService {
	return &approvalService{
		submissions: submissions,
		users:       users,
		watchlist:   watchlist,
		publisher:   publisher,
		notifier:    notifier,
		logger:      log,
		now:         time.Now,
	}
}

type approvalService struct {
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	watchlist   WatchlistService
	publisher   repository.EventPublisher
	notifier    telegram.Notifier
	logger      *logger.Logger
	now         func() time.Time
}

func (s *approvalService) Submit(ctx context.Context, submitterID uint, req dto.SubmissionRequest) (*entity.WatchlistSubmission, error) {
	draft, err := normalizeDraft(req)
	if err != nil {
		return nil, err
	}
	submitter, err := s.users.FindByID(ctx, submitterID)
	if err != nil {
		return nil, lookupErr(err, "user", submitterID)
	}

	submission := &entity.WatchlistSubmission{
		Symbol:      draft.Symbol,
		CompanyName: draft.CompanyName,
		Sector:      draft.Sector,
		Term:        draft.Term,
		Notes:       draft.Notes,
		TargetPrice: draft.TargetPrice,
		Status:      entity.SubmissionPending,
		SubmittedBy: submitterID,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		s.logger.Error("Failed to create submission", logger.ErrorField(err), logger.StringField("symbol", submission.Symbol))
		return nil, err
	}

	notice := telegram.SubmissionNotice{
		ID:          submission.ID,
		Symbol:      submission.Symbol,
		CompanyName: submission.CompanyName,
		Sector:      submission.Sector,
		Term:        string(submission.Term),
		SubmittedBy: submitter.Username,
		Notes:       submission.Notes,
	}
	utils.GoSafe(func() {
		if err := s.notifier.SendMessage(telegram.FormatSubmissionForTelegram(notice)); err != nil {
			s.logger.Warn("Failed to notify admins of submission", logger.ErrorField(err), logger.UintField("submission_id", notice.ID))
		}
	})

	return submission, nil
}

// Approve checks, in order, that the reviewer is an admin, that the submission
// exists and that it is still pending. The status flip and entry insert commit together.
func (s *approvalService) Approve(ctx context.Context, submissionID, reviewerID uint, notes string) (*entity.WatchlistEntry, error) {
	submission, err := s.checkReviewable(ctx, submissionID, reviewerID)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now().UTC()
	entry, err := s.submissions.Approve(ctx, repository.Review{
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Notes:        notes,
		ReviewedAt:   reviewedAt,
	})
	if err != nil {
		return nil, s.reviewErr(err, submissionID)
	}

	s.logger.Info("Submission approved", logger.UintField("submission_id", submissionID), logger.UintField("entry_id", entry.ID))
	s.watchlist.InvalidateGrouped()
	s.notifyReviewed(ctx, submission, entity.SubmissionApproved, notes, &entry.ID, reviewedAt)
	if err := s.publisher.Publish(ctx, common.EventWatchlistUpdated, 0, struct{}{}); err != nil {
		s.logger.Warn("Failed to publish watchlist update", logger.ErrorField(err))
	}
	return entry, nil
}

func (s *approvalService) Deny(ctx context.Context, submissionID, reviewerID uint, notes string) (*entity.WatchlistSubmission, error) {
	submission, err := s.checkReviewable(ctx, submissionID, reviewerID)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now().UTC()
	err = s.submissions.Deny(ctx, repository.Review{
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Notes:        notes,
		ReviewedAt:   reviewedAt,
	})
	if err != nil {
		return nil, s.reviewErr(err, submissionID)
	}

	s.logger.Info("Submission denied", logger.UintField("submission_id", submissionID))
	s.notifyReviewed(ctx, submission, entity.SubmissionDenied, notes, nil, reviewedAt)

	submission.Status = entity.SubmissionDenied
	submission.ReviewedBy = &reviewerID
	submission.ReviewedAt = &reviewedAt
	submission.AdminNotes = notes
	return submission, nil
}

func (s *approvalService) ListSubmissions(ctx context.Context, userID uint, filter dto.SubmissionFilter) ([]entity.WatchlistSubmission, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("unknown status %q", filter.Status)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}

	var submittedBy *uint
	if !user.IsAdmin {
		submittedBy = &user.ID
	}
	return s.submissions.List(ctx, filter.Status, submittedBy)
}

func (s *approvalService) checkReviewable(ctx context.Context, submissionID, reviewerID uint) (*entity.WatchlistSubmission, error) {
	if _, err := requireAdmin(ctx, s.users, reviewerID); err != nil {
		return nil, err
	}
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, lookupErr(err, "submission", submissionID)
	}
	if submission.Status != entity.SubmissionPending {
		return nil, apperror.Conflict("submission %d was already %s", submissionID, submission.Status)
	}
	return submission, nil
}

// reviewErr maps a lost review race to Conflict.
func (s *approvalService) reviewErr(err error, submissionID uint) error {
	if errors.Is(err, repository.ErrNotPending) {
		return apperror.Conflict("submission %d was already reviewed", submissionID)
	}
	s.logger.Error("Failed to review submission", logger.ErrorField(err), logger.UintField("submission_id", submissionID))
	return err
}

func (s *approvalService) notifyReviewed(ctx context.Context, submission *entity.WatchlistSubmission, status entity.SubmissionStatus, notes string, entryID *uint, at time.Time) {
	event := dto.ReviewedEvent{
		SubmissionID: submission.ID,
		Symbol:       submission.Symbol,
		Status:       status,
		AdminNotes:   notes,
		EntryID:      entryID,
		ReviewedAt:   at,
	}
	if err := s.publisher.Publish(ctx, common.EventSubmissionReviewed, submission.SubmittedBy, event); err != nil {
		s.logger.Warn("Failed to publish review event", logger.ErrorField(err), logger.UintField("submission_id", submission.ID))
	}
}
