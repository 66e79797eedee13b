package repository

import (
	"context"

	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
)

// RefreshRunRepository defines the interface for batch job run history.
type RefreshRunRepository interface {
	Create(ctx context.Context, run *entity.RefreshRun) error
	FindByID(ctx context.Context, id uint) (*entity.RefreshRun, error)
	FindAll(ctx context.Context, kind entity.RunKind, limit int) ([]entity.RefreshRun, error)
	Update(ctx context.Context, run *entity.RefreshRun) error
}

// NewRefreshRunRepository creates a new GORM-based refresh run repository.
func NewRefreshRunRepository(db *gorm.DB) RefreshRunRepository {
	return &refreshRunRepository{db: db}
}

type refreshRunRepository struct {
	db *gorm.DB
}

func (r *refreshRunRepository) Create(ctx context.Context, run *entity.RefreshRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *refreshRunRepository) FindByID(ctx context.Context, id uint) (*entity.RefreshRun, error) {
	var run entity.RefreshRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// FindAll returns the latest runs, optionally of one kind.
func (r *refreshRunRepository) FindAll(ctx context.Context, kind entity.RunKind, limit int) ([]entity.RefreshRun, error) {
	var runs []entity.RefreshRun
	query := r.db.WithContext(ctx).Order("started_at desc, id desc").Limit(limit)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *refreshRunRepository) Update(ctx context.Context, run *entity.RefreshRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}
