package repository

import (
	"context"
	"time"

	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BrokerageRepository stores aggregator links and the holdings synced through them.
type BrokerageRepository interface {
	UpsertLink(ctx context.Context, link *entity.BrokerageLink) error
	FindLinkByUserID(ctx context.Context, userID uint) (*entity.BrokerageLink, error)
	ListLinks(ctx context.Context) ([]entity.BrokerageLink, error)
	ReplaceHoldings(ctx context.Context, userID uint, holdings []entity.Holding, syncedAt time.Time) error
	ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error)
}

func NewBrokerageRepository(db *gorm.DB) BrokerageRepository {
	return &brokerageRepository{db: db}
}

type brokerageRepository struct {
	db *gorm.DB
}

// UpsertLink stores the user's link, replacing an earlier one.
func (r *brokerageRepository) UpsertLink(ctx context.Context, link *entity.BrokerageLink) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_id", "access_token", "institution_name", "linked_at"}),
	}).Create(link).Error
}

func (r *brokerageRepository) FindLinkByUserID(ctx context.Context, userID uint) (*entity.BrokerageLink, error) {
	var link entity.BrokerageLink
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *brokerageRepository) ListLinks(ctx context.Context) ([]entity.BrokerageLink, error) {
	var links []entity.BrokerageLink
	err := r.db.WithContext(ctx).Order("user_id").Find(&links).Error
	return links, err
}

// ReplaceHoldings swaps the user's holdings for the given set and stamps the link.
func (r *brokerageRepository) ReplaceHoldings(ctx context.Context, userID uint, holdings []entity.Holding, syncedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entity.Holding{}).Error; err != nil {
			return err
		}
		if len(holdings) > 0 {
			for i := range holdings {
				holdings[i].UserID = userID
				holdings[i].SyncedAt = syncedAt
			}
			if err := tx.CreateInBatches(holdings, 100).Error; err != nil {
				return err
			}
		}
		return tx.Model(&entity.BrokerageLink{}).
			Where("user_id = ?", userID).
			Update("last_synced_at", syncedAt).Error
	})
}

func (r *brokerageRepository) ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error) {
	var holdings []entity.Holding
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("symbol, id").Find(&holdings).Error
	return holdings, err
}
