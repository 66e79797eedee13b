package repository

import (
	"context"

	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uint) (*entity.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]entity.Comment, error)
	CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	Delete(ctx context.Context, id uint) error
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

type commentRepository struct {
	db *gorm.DB
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Omit("Author").Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uint) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return countByPost(ctx, r.db, &entity.Comment{}, postIDs)
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Comment{}, id).Error
}

type postCount struct {
	PostID uint
	Count  int64
}

func countByPost(ctx context.Context, db *gorm.DB, model interface{}, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []postCount
	err := db.WithContext(ctx).Model(model).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostID] = row.Count
	}
	return counts, nil
}
