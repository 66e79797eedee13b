package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BrokerageLink is a user's connection to the brokerage aggregator.
type BrokerageLink struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	ItemID          string     `gorm:"not null" json:"item_id"`
	AccessToken     string     `gorm:"not null" json:"-"`
	InstitutionName string     `json:"institution_name"`
	LinkedAt        time.Time  `gorm:"not null" json:"linked_at"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty"`
}

func (BrokerageLink) TableName() string {
	return "brokerage_links"
}

// Holding is a position reported by the aggregator. A sync replaces all of a user's holdings.
type Holding struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	UserID           uint                `gorm:"not null;index" json:"user_id"`
	Symbol           string              `gorm:"type:varchar(15)" json:"symbol"`
	Name             string              `json:"name"`
	Quantity         decimal.Decimal     `gorm:"type:numeric(18,4);not null" json:"quantity"`
	CostBasis        decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"cost_basis"`
	CurrentPrice     decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"current_price"`
	InstitutionValue decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"institution_value"`
	SyncedAt         time.Time           `gorm:"not null" json:"synced_at"`
}

func (Holding) TableName() string {
	return "holdings"
}
