package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChartResponse is the subset of the quote provider's chart payload we read.
type ChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string           `json:"symbol"`
				Currency           string           `json:"currency"`
				RegularMarketPrice *decimal.Decimal `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type PriceUpdate struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price" swaggertype:"number"`
}

type PriceFailure struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// RefreshSummary is the outcome of one price refresh batch.
type RefreshSummary struct {
	RunID   uint           `json:"run_id"`
	Updated []PriceUpdate  `json:"updated"`
	Failed  []PriceFailure `json:"failed"`
}

// HoldingsSyncSummary is the outcome of syncing holdings for every linked user.
type HoldingsSyncSummary struct {
	RunID  uint             `json:"run_id"`
	Synced []UserSyncResult `json:"synced"`
	Failed []UserSyncResult `json:"failed"`
}

type UserSyncResult struct {
	UserID   uint   `json:"user_id"`
	Holdings int    `json:"holdings,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RefreshRunResponse is the DTO for API responses containing refresh run details.
type RefreshRunResponse struct {
	ID           uint        `json:"id"`
	Kind         string      `json:"kind"`
	Trigger      string      `json:"trigger"`
	Status       string      `json:"status"`
	TriggeredBy  *uint       `json:"triggered_by,omitempty"`
	StartedAt    time.Time   `json:"started_at"`
	Duration     int64       `json:"duration_ms"`
	Output       interface{} `json:"output,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// LastPriceResponse is the most recently refreshed price of a symbol.
type LastPriceResponse struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price" swaggertype:"number"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

type RefreshRunQuery struct {
	Kind  string `query:"kind"`
	Limit int    `query:"limit"`
}
