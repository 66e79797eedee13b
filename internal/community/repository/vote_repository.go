package repository

import (
	"context"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository stores post sentiment votes, one row per (post, user).
type VoteRepository interface {
	Upsert(ctx context.Context, vote *entity.PostVote) error
	FindByPostAndUser(ctx context.Context, postID, userID uint) (*entity.PostVote, error)
	CountShortTerm(ctx context.Context, postID uint) ([]dto.SentimentCount, error)
	CountLongTerm(ctx context.Context, postID uint) ([]dto.SentimentCount, error)
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

type voteRepository struct {
	db *gorm.DB
}

// Upsert inserts the vote or overwrites the user's previous one in a single statement.
func (r *voteRepository) Upsert(ctx context.Context, vote *entity.PostVote) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"short_term_sentiment", "long_term_sentiment", "updated_at"}),
	}).Create(vote).Error
}

func (r *voteRepository) FindByPostAndUser(ctx context.Context, postID, userID uint) (*entity.PostVote, error) {
	var vote entity.PostVote
	if err := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&vote).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *voteRepository) CountShortTerm(ctx context.Context, postID uint) ([]dto.SentimentCount, error) {
	return r.countBy(ctx, postID, "short_term_sentiment")
}

func (r *voteRepository) CountLongTerm(ctx context.Context, postID uint) ([]dto.SentimentCount, error) {
	return r.countBy(ctx, postID, "long_term_sentiment")
}

func (r *voteRepository) countBy(ctx context.Context, postID uint, column string) ([]dto.SentimentCount, error) {
	var rows []dto.SentimentCount
	err := r.db.WithContext(ctx).Model(&entity.PostVote{}).
		Select(column+" AS sentiment, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group(column).
		Scan(&rows).Error
	return rows, err
}
