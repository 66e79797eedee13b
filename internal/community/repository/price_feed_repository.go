package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-circle/internal/community/config"
	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrSymbolNotFound is returned when the quote provider does not know the symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// PriceFeedRepository fetches the latest traded price of a symbol.
type PriceFeedRepository interface {
	// FetchPrice returns nil without error when the provider has no price for the symbol.
	FetchPrice(ctx context.Context, symbol string) (*decimal.Decimal, error)
}

type priceFeedRepository struct {
	cfg            config.PriceFeed
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

const (
	defaultPriceFeedRequestsPerMinute = 60
	defaultPriceFeedTimeout           = 10 * time.Second
)

func NewPriceFeedRepository(cfg config.PriceFeed, log *logger.Logger) PriceFeedRepository {
	if cfg.MaxRequestPerMinute <= 0 {
		cfg.MaxRequestPerMinute = defaultPriceFeedRequestsPerMinute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPriceFeedTimeout
	}
	interval := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
	return &priceFeedRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		requestLimiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (r *priceFeedRepository) FetchPrice(ctx context.Context, symbol string) (*decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d",
		strings.TrimRight(r.cfg.BaseURL, "/"), url.PathEscape(symbol))

	fields := []zap.Field{
		zap.String("url", endpoint),
		zap.String("symbol", symbol),
		zap.Int("max_request_per_minute", r.cfg.MaxRequestPerMinute),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", append(fields, zap.Error(err))...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to price feed", append(fields, zap.Error(err))...)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		r.log.ErrorContext(ctx, "Received non-OK response from price feed", append(fields, zap.Int("status_code", resp.StatusCode))...)
		return nil, fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}

	var chart dto.ChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode price feed response: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	r.log.DebugContext(ctx, "Fetched price", append(fields, zap.Any("price", price))...)
	return price, nil
}
