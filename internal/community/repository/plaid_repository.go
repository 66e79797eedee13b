package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang-stock-circle/internal/community/config"
	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PlaidRepository talks to the brokerage aggregator's REST API.
type PlaidRepository interface {
	CreateLinkToken(ctx context.Context, userID uint) (*dto.LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*dto.ExchangeResult, error)
	GetHoldings(ctx context.Context, accessToken string) ([]dto.PlaidHolding, error)
}

type plaidRepository struct {
	cfg            config.Plaid
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

const defaultPlaidRequestsPerMinute = 120

func NewPlaidRepository(cfg config.Plaid, log *logger.Logger) PlaidRepository {
	if cfg.MaxRequestPerMinute <= 0 {
		cfg.MaxRequestPerMinute = defaultPlaidRequestsPerMinute
	}
	interval := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
	return &plaidRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		requestLimiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (r *plaidRepository) CreateLinkToken(ctx context.Context, userID uint) (*dto.LinkTokenResponse, error) {
	payload := dto.PlaidLinkTokenRequest{
		ClientID:     r.cfg.ClientID,
		Secret:       r.cfg.Secret,
		ClientName:   r.cfg.ClientName,
		Language:     "en",
		CountryCodes: r.cfg.CountryCodes,
		Products:     r.cfg.Products,
		User:         dto.PlaidLinkUser{ClientUserID: strconv.FormatUint(uint64(userID), 10)},
	}

	var response dto.PlaidLinkTokenResponse
	if err := r.post(ctx, "/link/token/create", payload, &response); err != nil {
		return nil, err
	}
	return &dto.LinkTokenResponse{LinkToken: response.LinkToken, Expiration: response.Expiration}, nil
}

func (r *plaidRepository) ExchangePublicToken(ctx context.Context, publicToken string) (*dto.ExchangeResult, error) {
	payload := dto.PlaidExchangeRequest{
		ClientID:    r.cfg.ClientID,
		Secret:      r.cfg.Secret,
		PublicToken: publicToken,
	}

	var response dto.PlaidExchangeResponse
	if err := r.post(ctx, "/item/public_token/exchange", payload, &response); err != nil {
		return nil, err
	}
	return &dto.ExchangeResult{AccessToken: response.AccessToken, ItemID: response.ItemID}, nil
}

// GetHoldings returns the item's holdings joined with their securities.
func (r *plaidRepository) GetHoldings(ctx context.Context, accessToken string) ([]dto.PlaidHolding, error) {
	payload := dto.PlaidHoldingsRequest{
		ClientID:    r.cfg.ClientID,
		Secret:      r.cfg.Secret,
		AccessToken: accessToken,
	}

	var response dto.PlaidHoldingsResponse
	if err := r.post(ctx, "/investments/holdings/get", payload, &response); err != nil {
		return nil, err
	}

	type security struct {
		name   string
		ticker string
	}
	securities := make(map[string]security, len(response.Securities))
	for _, s := range response.Securities {
		sec := security{name: s.Name}
		if s.TickerSymbol != nil {
			sec.ticker = *s.TickerSymbol
		}
		securities[s.SecurityID] = sec
	}

	holdings := make([]dto.PlaidHolding, 0, len(response.Holdings))
	for _, h := range response.Holdings {
		sec := securities[h.SecurityID]
		holdings = append(holdings, dto.PlaidHolding{
			Symbol:           sec.ticker,
			Name:             sec.name,
			Quantity:         h.Quantity,
			CostBasis:        nullDecimal(h.CostBasis),
			CurrentPrice:     nullDecimal(h.InstitutionPrice),
			InstitutionValue: nullDecimal(h.InstitutionValue),
		})
	}
	return holdings, nil
}

func (r *plaidRepository) post(ctx context.Context, path string, payload, out interface{}) error {
	endpoint := strings.TrimRight(r.cfg.BaseURL, "/") + path
	fields := []zap.Field{zap.String("url", endpoint)}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", append(fields, zap.Error(err))...)
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Plaid", append(fields, zap.Error(err))...)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var plaidErr dto.PlaidErrorResponse
		_ = json.Unmarshal(respBody, &plaidErr)
		r.log.ErrorContext(ctx, "Received non-OK response from Plaid",
			append(fields, zap.Int("status_code", resp.StatusCode), zap.String("error_code", plaidErr.ErrorCode))...)
		if plaidErr.ErrorCode != "" {
			return fmt.Errorf("plaid %s: %s", plaidErr.ErrorCode, plaidErr.ErrorMessage)
		}
		return fmt.Errorf("plaid returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode plaid response: %w", err)
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
