package repository

import (
	"context"
	"errors"
	"time"

	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
)

// ErrNotPending is returned when a review loses to an earlier one.
var ErrNotPending = errors.New("submission is not pending")

// Review is the reviewer's decision on a submission.
type Review struct {
	SubmissionID uint
	ReviewerID   uint
	Notes        string
	ReviewedAt   time.Time
}

// SubmissionRepository defines the interface for watchlist submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *entity.WatchlistSubmission) error
	FindByID(ctx context.Context, id uint) (*entity.WatchlistSubmission, error)
	List(ctx context.Context, status entity.SubmissionStatus, submittedBy *uint) ([]entity.WatchlistSubmission, error)
	Approve(ctx context.Context, review Review) (*entity.WatchlistEntry, error)
	Deny(ctx context.Context, review Review) error
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Create(ctx context.Context, submission *entity.WatchlistSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) FindByID(ctx context.Context, id uint) (*entity.WatchlistSubmission, error) {
	var submission entity.WatchlistSubmission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// List returns submissions newest first. Empty status and nil submittedBy mean no filter.
func (r *submissionRepository) List(ctx context.Context, status entity.SubmissionStatus, submittedBy *uint) ([]entity.WatchlistSubmission, error) {
	var submissions []entity.WatchlistSubmission
	query := r.db.WithContext(ctx).Order("submitted_at desc, id desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if submittedBy != nil {
		query = query.Where("submitted_by = ?", *submittedBy)
	}
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// Approve moves a pending submission to approved and creates its watchlist entry
// in the same transaction. ErrNotPending means nothing was written.
func (r *submissionRepository) Approve(ctx context.Context, review Review) (*entity.WatchlistEntry, error) {
	var entry *entity.WatchlistEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := markReviewed(tx, review, entity.SubmissionApproved); err != nil {
			return err
		}

		var submission entity.WatchlistSubmission
		if err := tx.First(&submission, review.SubmissionID).Error; err != nil {
			return err
		}

		submissionID := submission.ID
		entry = &entity.WatchlistEntry{
			Symbol:       submission.Symbol,
			CompanyName:  submission.CompanyName,
			Sector:       submission.Sector,
			Term:         submission.Term,
			Notes:        submission.Notes,
			TargetPrice:  submission.TargetPrice,
			AddedBy:      review.ReviewerID,
			AddedAt:      review.ReviewedAt,
			SubmissionID: &submissionID,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Deny moves a pending submission to denied. ErrNotPending means nothing was written.
func (r *submissionRepository) Deny(ctx context.Context, review Review) error {
	return markReviewed(r.db.WithContext(ctx), review, entity.SubmissionDenied)
}

func markReviewed(db *gorm.DB, review Review, status entity.SubmissionStatus) error {
	result := db.Model(&entity.WatchlistSubmission{}).
		Where("id = ? AND status = ?", review.SubmissionID, entity.SubmissionPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": review.ReviewerID,
			"reviewed_at": review.ReviewedAt,
			"admin_notes": review.Notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
