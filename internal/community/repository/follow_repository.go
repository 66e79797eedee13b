package repository

import (
	"context"

	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
)

// FollowRepository stores the directed follow graph.
type FollowRepository interface {
	Create(ctx context.Context, follow *entity.Follow) error
	Delete(ctx context.Context, followerID, followingID uint) (int64, error)
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	ListFollowers(ctx context.Context, userID uint) ([]entity.User, error)
	ListFollowing(ctx context.Context, userID uint) ([]entity.User, error)
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

type followRepository struct {
	db *gorm.DB
}

func (r *followRepository) Create(ctx context.Context, follow *entity.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&entity.Follow{})
	return result.RowsAffected, result.Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, err
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, err
}
