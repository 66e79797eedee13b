package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type LinkTokenResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

type ExchangeTokenRequest struct {
	PublicToken     string `json:"public_token" validate:"required"`
	InstitutionName string `json:"institution_name"`
}

// ExchangeResult is the aggregator's answer to a public token exchange.
type ExchangeResult struct {
	AccessToken string
	ItemID      string
}

// PlaidHolding is a holding joined with its security, as returned by the aggregator.
type PlaidHolding struct {
	Symbol           string
	Name             string
	Quantity         decimal.Decimal
	CostBasis        decimal.NullDecimal
	CurrentPrice     decimal.NullDecimal
	InstitutionValue decimal.NullDecimal
}

type PlaidLinkTokenRequest struct {
	ClientID     string        `json:"client_id"`
	Secret       string        `json:"secret"`
	ClientName   string        `json:"client_name"`
	Language     string        `json:"language"`
	CountryCodes []string      `json:"country_codes"`
	Products     []string      `json:"products"`
	User         PlaidLinkUser `json:"user"`
}

type PlaidLinkUser struct {
	ClientUserID string `json:"client_user_id"`
}

type PlaidLinkTokenResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
	RequestID  string    `json:"request_id"`
}

type PlaidExchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

type PlaidExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

type PlaidHoldingsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

type PlaidHoldingsResponse struct {
	Holdings []struct {
		SecurityID       string           `json:"security_id"`
		Quantity         decimal.Decimal  `json:"quantity"`
		CostBasis        *decimal.Decimal `json:"cost_basis"`
		InstitutionPrice *decimal.Decimal `json:"institution_price"`
		InstitutionValue *decimal.Decimal `json:"institution_value"`
	} `json:"holdings"`
	Securities []struct {
		SecurityID   string  `json:"security_id"`
		Name         string  `json:"name"`
		TickerSymbol *string `json:"ticker_symbol"`
	} `json:"securities"`
}

// PlaidErrorResponse is the aggregator's error body.
type PlaidErrorResponse struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
