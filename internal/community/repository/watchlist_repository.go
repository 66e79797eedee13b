package repository

import (
	"context"
	"time"

	"golang-stock-circle/internal/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WatchlistRepository defines the interface for published watchlist entries.
type WatchlistRepository interface {
	Create(ctx context.Context, entry *entity.WatchlistEntry) error
	FindByID(ctx context.Context, id uint) (*entity.WatchlistEntry, error)
	FindAll(ctx context.Context) ([]entity.WatchlistEntry, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) (int64, error)
	DistinctSymbols(ctx context.Context) ([]string, error)
	UpdatePriceBySymbol(ctx context.Context, symbol string, price decimal.Decimal, at time.Time) (int64, error)
}

func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

type watchlistRepository struct {
	db *gorm.DB
}

func (r *watchlistRepository) Create(ctx context.Context, entry *entity.WatchlistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *watchlistRepository) FindByID(ctx context.Context, id uint) (*entity.WatchlistEntry, error) {
	var entry entity.WatchlistEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *watchlistRepository) FindAll(ctx context.Context) ([]entity.WatchlistEntry, error) {
	var entries []entity.WatchlistEntry
	if err := r.db.WithContext(ctx).Order("symbol, id").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *watchlistRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&entity.WatchlistEntry{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *watchlistRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&entity.WatchlistEntry{}, id)
	return result.RowsAffected, result.Error
}

// DistinctSymbols returns each watched symbol once, sorted.
func (r *watchlistRepository) DistinctSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := r.db.WithContext(ctx).Model(&entity.WatchlistEntry{}).
		Distinct("symbol").
		Order("symbol").
		Pluck("symbol", &symbols).Error
	return symbols, err
}

// UpdatePriceBySymbol sets the current price on every entry with the symbol.
func (r *watchlistRepository) UpdatePriceBySymbol(ctx context.Context, symbol string, price decimal.Decimal, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.WatchlistEntry{}).
		Where("symbol = ?", symbol).
		Updates(map[string]interface{}{
			"current_price":    decimal.NewNullDecimal(price),
			"price_updated_at": at,
		})
	return result.RowsAffected, result.Error
}
