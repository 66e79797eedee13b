package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/common"
	"golang-stock-circle/pkg/logger"
	"golang-stock-circle/pkg/utils"

	"gorm.io/gorm"
)

// BrokerageService links users to the brokerage aggregator and syncs their holdings.
type BrokerageService interface {
	CreateLinkToken(ctx context.Context, userID uint) (*dto.LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, userID uint, req dto.ExchangeTokenRequest) (*entity.BrokerageLink, error)
	SyncHoldings(ctx context.Context, userID uint) ([]entity.Holding, error)
	ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error)
	// SyncAll syncs every linked user. One user's failure does not stop the others.
	SyncAll(ctx context.Context, trigger entity.RunTrigger) (*dto.HoldingsSyncSummary, error)
}

func NewBrokerageService(
	links repository.BrokerageRepository,
	plaid repository.PlaidRepository,
	runs repository.RefreshRunRepository,
	publisher repository.EventPublisher,
	log *logger.Logger,
) BrokerageService {
	return &brokerageService{
		links:     links,
		plaid:     plaid,
		publisher: publisher,
		recorder:  runRecorder{runs: runs, logger: log, now: time.Now},
		logger:    log,
		now:       time.Now,
	}
}

type brokerageService struct {
	links     repository.BrokerageRepository
	plaid     repository.PlaidRepository
	publisher repository.EventPublisher
	recorder  runRecorder
	logger    *logger.Logger
	now       func() time.Time
}

func (s *brokerageService) CreateLinkToken(ctx context.Context, userID uint) (*dto.LinkTokenResponse, error) {
	token, err := s.plaid.CreateLinkToken(ctx, userID)
	if err != nil {
		return nil, apperror.Upstream("could not create link token", err)
	}
	return token, nil
}

func (s *brokerageService) ExchangePublicToken(ctx context.Context, userID uint, req dto.ExchangeTokenRequest) (*entity.BrokerageLink, error) {
	publicToken := strings.TrimSpace(req.PublicToken)
	if publicToken == "" {
		return nil, apperror.Validation("public token is required")
	}

	exchanged, err := s.plaid.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, apperror.Upstream("could not exchange public token", err)
	}

	link := &entity.BrokerageLink{
		UserID:          userID,
		ItemID:          exchanged.ItemID,
		AccessToken:     exchanged.AccessToken,
		InstitutionName: strings.TrimSpace(req.InstitutionName),
		LinkedAt:        s.now().UTC(),
	}
	if err := s.links.UpsertLink(ctx, link); err != nil {
		s.logger.Error("Failed to store brokerage link", logger.ErrorField(err), logger.UintField("user_id", userID))
		return nil, err
	}
	return s.links.FindLinkByUserID(ctx, userID)
}

func (s *brokerageService) SyncHoldings(ctx context.Context, userID uint) ([]entity.Holding, error) {
	link, err := s.links.FindLinkByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no brokerage linked for user %d", userID)
		}
		return nil, err
	}
	return s.sync(ctx, link)
}

func (s *brokerageService) sync(ctx context.Context, link *entity.BrokerageLink) ([]entity.Holding, error) {
	remote, err := s.plaid.GetHoldings(ctx, link.AccessToken)
	if err != nil {
		return nil, apperror.Upstream("could not fetch holdings", err)
	}

	holdings := make([]entity.Holding, 0, len(remote))
	for _, h := range remote {
		holdings = append(holdings, entity.Holding{
			Symbol:           strings.ToUpper(h.Symbol),
			Name:             h.Name,
			Quantity:         h.Quantity,
			CostBasis:        h.CostBasis,
			CurrentPrice:     h.CurrentPrice,
			InstitutionValue: h.InstitutionValue,
		})
	}

	if err := s.links.ReplaceHoldings(ctx, link.UserID, holdings, s.now().UTC()); err != nil {
		s.logger.Error("Failed to store holdings", logger.ErrorField(err), logger.UintField("user_id", link.UserID))
		return nil, err
	}

	if err := s.publisher.Publish(ctx, common.EventHoldingsSynced, link.UserID, map[string]int{"holdings": len(holdings)}); err != nil {
		s.logger.Warn("Failed to publish holdings event", logger.ErrorField(err), logger.UintField("user_id", link.UserID))
	}
	return s.links.ListHoldings(ctx, link.UserID)
}

func (s *brokerageService) ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error) {
	return s.links.ListHoldings(ctx, userID)
}

func (s *brokerageService) SyncAll(ctx context.Context, trigger entity.RunTrigger) (*dto.HoldingsSyncSummary, error) {
	links, err := s.links.ListLinks(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list brokerage links", logger.ErrorField(err))
		return nil, err
	}

	run, err := s.recorder.start(ctx, entity.RunKindHoldingsSync, trigger, nil)
	if err != nil {
		return nil, err
	}

	summary := &dto.HoldingsSyncSummary{
		RunID:  run.ID,
		Synced: []dto.UserSyncResult{},
		Failed: []dto.UserSyncResult{},
	}
	var runErr error
	for i := range links {
		if !utils.ShouldContinue(ctx) {
			runErr = ctx.Err()
			break
		}
		holdings, err := s.sync(ctx, &links[i])
		if err != nil {
			s.logger.WarnContext(ctx, "Holdings sync failed for user", logger.UintField("user_id", links[i].UserID), logger.ErrorField(err))
			summary.Failed = append(summary.Failed, dto.UserSyncResult{UserID: links[i].UserID, Error: err.Error()})
			continue
		}
		summary.Synced = append(summary.Synced, dto.UserSyncResult{UserID: links[i].UserID, Holdings: len(holdings)})
	}

	s.recorder.finish(ctx, run, summary, runErr)
	s.logger.InfoContext(ctx, "Holdings sync finished",
		logger.UintField("run_id", run.ID),
		logger.IntField("synced", len(summary.Synced)),
		logger.IntField("failed", len(summary.Failed)))
	return summary, runErr
}
