package repository

import (
	"context"

	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
)

// LikeRepository stores likes, unique per (post, user).
type LikeRepository interface {
	Create(ctx context.Context, like *entity.Like) error
	Delete(ctx context.Context, postID, userID uint) (int64, error)
	Exists(ctx context.Context, postID, userID uint) (bool, error)
	CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

type likeRepository struct {
	db *gorm.DB
}

// Create returns gorm.ErrDuplicatedKey when the user already liked the post.
func (r *likeRepository) Create(ctx context.Context, like *entity.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, postID, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&entity.Like{})
	return result.RowsAffected, result.Error
}

func (r *likeRepository) Exists(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return countByPost(ctx, r.db, &entity.Like{}, postIDs)
}
