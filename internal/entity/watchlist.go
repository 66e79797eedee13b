package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Term is the holding horizon a watchlist idea is meant for.
type Term string

const (
	TermLong  Term = "long"
	TermShort Term = "short"
)

func (t Term) Valid() bool {
	return t == TermLong || t == TermShort
}

// SubmissionStatus is the review state of a WatchlistSubmission.
// pending is initial; approved and denied are terminal.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionDenied   SubmissionStatus = "denied"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionDenied:
		return true
	}
	return false
}

// WatchlistEntry is a published watchlist item. It exists either because an
// admin added it directly (SubmissionID nil) or because exactly one
// submission was approved (SubmissionID set, unique).
type WatchlistEntry struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	Symbol         string              `gorm:"type:varchar(15);not null;index" json:"symbol"`
	CompanyName    string              `gorm:"not null" json:"company_name"`
	Sector         string              `gorm:"type:varchar(60);not null;index" json:"sector"`
	Term           Term                `gorm:"type:varchar(10);not null" json:"term"`
	Notes          string              `gorm:"type:text" json:"notes"`
	CurrentPrice   decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"current_price"`
	TargetPrice    decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"target_price"`
	PriceUpdatedAt *time.Time          `json:"price_updated_at,omitempty"`
	AddedBy        uint                `gorm:"not null" json:"added_by"`
	AddedAt        time.Time           `gorm:"not null" json:"added_at"`
	SubmissionID   *uint               `gorm:"uniqueIndex" json:"submission_id,omitempty"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}

// WatchlistSubmission is a user-proposed watchlist candidate awaiting review.
type WatchlistSubmission struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Symbol      string              `gorm:"type:varchar(15);not null" json:"symbol"`
	CompanyName string              `gorm:"not null" json:"company_name"`
	Sector      string              `gorm:"type:varchar(60);not null" json:"sector"`
	Term        Term                `gorm:"type:varchar(10);not null" json:"term"`
	Notes       string              `gorm:"type:text" json:"notes"`
	TargetPrice decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"target_price"`
	Status      SubmissionStatus    `gorm:"type:varchar(10);not null;default:pending;index" json:"status"`
	SubmittedBy uint                `gorm:"not null;index" json:"submitted_by"`
	SubmittedAt time.Time           `gorm:"not null" json:"submitted_at"`
	ReviewedBy  *uint               `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time          `json:"reviewed_at,omitempty"`
	AdminNotes  string              `gorm:"type:text" json:"admin_notes,omitempty"`
}

func (WatchlistSubmission) TableName() string {
	return "watchlist_submissions"
}
