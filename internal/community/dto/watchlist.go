package dto

import (
	"time"

	"golang-stock-circle/internal/entity"

	"github.com/shopspring/decimal"
)

// SubmissionRequest is a proposed watchlist candidate. It is also used for direct admin adds.
type SubmissionRequest struct {
	Symbol      string              `json:"symbol" validate:"required,max=15"`
	CompanyName string              `json:"company_name" validate:"required"`
	Sector      string              `json:"sector" validate:"required,max=60"`
	Term        entity.Term         `json:"term" validate:"required,oneof=long short"`
	Notes       string              `json:"notes"`
	TargetPrice decimal.NullDecimal `json:"target_price" swaggertype:"number"`
}

// UpdateEntryRequest changes only the fields that are set.
type UpdateEntryRequest struct {
	CompanyName  *string          `json:"company_name"`
	Sector       *string          `json:"sector"`
	Term         *entity.Term     `json:"term" validate:"omitempty,oneof=long short"`
	Notes        *string          `json:"notes"`
	TargetPrice  *decimal.Decimal `json:"target_price" swaggertype:"number"`
	CurrentPrice *decimal.Decimal `json:"current_price" swaggertype:"number"`
}

// ReviewRequest carries the admin's notes for an approval or denial.
type ReviewRequest struct {
	Notes string `json:"notes"`
}

type SubmissionFilter struct {
	Status entity.SubmissionStatus `query:"status"`
}

// SectorGroup holds a sector's entries split by term, each sorted by symbol.
type SectorGroup struct {
	Long  []entity.WatchlistEntry `json:"long"`
	Short []entity.WatchlistEntry `json:"short"`
}

// GroupedWatchlist maps sector name to its entries.
type GroupedWatchlist map[string]SectorGroup

// ReviewedEvent is the payload sent to a submitter once their submission is reviewed.
type ReviewedEvent struct {
	SubmissionID uint                    `json:"submission_id"`
	Symbol       string                  `json:"symbol"`
	Status       entity.SubmissionStatus `json:"status"`
	AdminNotes   string                  `json:"admin_notes,omitempty"`
	EntryID      *uint                   `json:"entry_id,omitempty"`
	ReviewedAt   time.Time               `json:"reviewed_at"`
}
