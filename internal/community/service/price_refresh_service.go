package service

import (
	"context"
	"errors"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/common"
	"golang-stock-circle/pkg/logger"
	"golang-stock-circle/pkg/telegram"
	"golang-stock-circle/pkg/utils"
)

var errNoPrice = errors.New("no price available")

// PriceRefreshService refreshes watchlist prices from the quote provider.
type PriceRefreshService interface {
	// Refresh fetches each distinct watched symbol once, in order. A symbol that
	// fails is reported in the summary and does not stop the batch.
	Refresh(ctx context.Context, trigger entity.RunTrigger, triggeredBy *uint) (*dto.RefreshSummary, error)
	// RefreshAsAdmin is Refresh for a manual request, after checking the caller is an admin.
	RefreshAsAdmin(ctx context.Context, adminID uint) (*dto.RefreshSummary, error)
	LastPrice(ctx context.Context, symbol string) (*dto.PriceUpdate, *time.Time, error)
}

type PriceRefreshDeps struct {
	Entries   repository.WatchlistRepository
	Users     repository.UserRepository
	Runs      repository.RefreshRunRepository
	Feed      repository.PriceFeedRepository
	Prices    repository.PriceCache
	Watchlist WatchlistService
	Publisher repository.EventPublisher
	Notifier  telegram.Notifier
}

func NewPriceRefreshService(deps PriceRefreshDeps, log *logger.Logger) PriceRefreshService {
	return &priceRefreshService{
		entries:   deps.Entries,
		users:     deps.Users,
		feed:      deps.Feed,
		prices:    deps.Prices,
		watchlist: deps.Watchlist,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		recorder:  runRecorder{runs: deps.Runs, logger: log, now: time.Now},
		logger:    log,
		now:       time.Now,
	}
}

type priceRefreshService struct {
	entries   repository.WatchlistRepository
	users     repository.UserRepository
	feed      repository.PriceFeedRepository
	prices    repository.PriceCache
	watchlist WatchlistService
	publisher repository.EventPublisher
	notifier  telegram.Notifier
	recorder  runRecorder
	logger    *logger.Logger
	now       func() time.Time
}

func (s *priceRefreshService) RefreshAsAdmin(ctx context.Context, adminID uint) (*dto.RefreshSummary, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	return s.Refresh(ctx, entity.TriggerManual, &adminID)
}

func (s *priceRefreshService) Refresh(ctx context.Context, trigger entity.RunTrigger, triggeredBy *uint) (*dto.RefreshSummary, error) {
	symbols, err := s.entries.DistinctSymbols(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load watched symbols", logger.ErrorField(err))
		return nil, err
	}

	run, err := s.recorder.start(ctx, entity.RunKindPriceRefresh, trigger, triggeredBy)
	if err != nil {
		return nil, err
	}

	summary := &dto.RefreshSummary{
		RunID:   run.ID,
		Updated: []dto.PriceUpdate{},
		Failed:  []dto.PriceFailure{},
	}
	s.logger.InfoContext(ctx, "Starting price refresh", logger.UintField("run_id", run.ID), logger.IntField("symbols", len(symbols)))

	var runErr error
	for _, symbol := range symbols {
		if !utils.ShouldContinue(ctx) {
			runErr = ctx.Err()
			break
		}
		if err := s.refreshSymbol(ctx, symbol, summary); err != nil {
			summary.Failed = append(summary.Failed, dto.PriceFailure{Symbol: symbol, Error: err.Error()})
			s.logger.WarnContext(ctx, "Price refresh failed for symbol", logger.StringField("symbol", symbol), logger.ErrorField(err))
		}
	}

	s.recorder.finish(ctx, run, summary, runErr)
	s.logger.InfoContext(ctx, "Price refresh finished",
		logger.UintField("run_id", run.ID),
		logger.IntField("updated", len(summary.Updated)),
		logger.IntField("failed", len(summary.Failed)))

	if len(summary.Updated) > 0 {
		s.watchlist.InvalidateGrouped()
		if err := s.publisher.Publish(ctx, common.EventWatchlistUpdated, 0, summary); err != nil {
			s.logger.Warn("Failed to publish watchlist update", logger.ErrorField(err))
		}
	}
	if trigger == entity.TriggerSchedule {
		s.notify(summary)
	}

	if runErr != nil {
		return summary, apperror.Upstream("price refresh interrupted", runErr)
	}
	return summary, nil
}

func (s *priceRefreshService) refreshSymbol(ctx context.Context, symbol string, summary *dto.RefreshSummary) error {
	price, err := s.feed.FetchPrice(ctx, symbol)
	if err != nil {
		return err
	}
	if price == nil {
		return errNoPrice
	}

	at := s.now().UTC()
	if _, err := s.entries.UpdatePriceBySymbol(ctx, symbol, *price, at); err != nil {
		return err
	}
	if err := s.prices.SetLastPrice(ctx, symbol, *price, at); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache last price", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}

	summary.Updated = append(summary.Updated, dto.PriceUpdate{Symbol: symbol, Price: *price})
	return nil
}

func (s *priceRefreshService) notify(summary *dto.RefreshSummary) {
	updated := make([]telegram.PriceChange, 0, len(summary.Updated))
	for _, u := range summary.Updated {
		updated = append(updated, telegram.PriceChange{Symbol: u.Symbol, Price: u.Price})
	}
	failed := make([]telegram.PriceFailure, 0, len(summary.Failed))
	for _, f := range summary.Failed {
		failed = append(failed, telegram.PriceFailure{Symbol: f.Symbol, Error: f.Error})
	}
	for _, msg := range telegram.FormatPriceRefreshForTelegram(updated, failed) {
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Warn("Failed to send price refresh summary", logger.ErrorField(err))
			return
		}
	}
}

// LastPrice returns the most recently refreshed price of a symbol, or NotFound.
func (s *priceRefreshService) LastPrice(ctx context.Context, symbol string) (*dto.PriceUpdate, *time.Time, error) {
	price, at, err := s.prices.GetLastPrice(ctx, symbol)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read last price", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return nil, nil, err
	}
	if price == nil {
		return nil, nil, apperror.NotFound("no refreshed price for %s", symbol)
	}
	return &dto.PriceUpdate{Symbol: symbol, Price: *price}, at, nil
}
