package repository

import (
	"context"

	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
)

// PostRepository defines the interface for community posts.
type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uint) (*entity.Post, error)
	List(ctx context.Context, symbol string, limit, offset int) ([]entity.Post, error)
	Delete(ctx context.Context, id uint) error
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

type postRepository struct {
	db *gorm.DB
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Omit("Author").Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	var post entity.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns posts newest first, optionally for one symbol.
func (r *postRepository) List(ctx context.Context, symbol string, limit, offset int) ([]entity.Post, error) {
	var posts []entity.Post
	query := r.db.WithContext(ctx).Preload("Author").Order("created_at desc, id desc").Limit(limit).Offset(offset)
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete removes a post together with its comments, likes and votes.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&entity.Comment{}, &entity.Like{}, &entity.PostVote{}} {
			if err := tx.Where("post_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&entity.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
