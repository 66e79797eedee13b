package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/common"
	"golang-stock-circle/pkg/logger"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// WatchlistService serves the published watchlist and its admin edits.
type WatchlistService interface {
	GetGrouped(ctx context.Context) (dto.GroupedWatchlist, error)
	ListEntries(ctx context.Context) ([]entity.WatchlistEntry, error)
	GetEntry(ctx context.Context, id uint) (*entity.WatchlistEntry, error)
	AddEntry(ctx context.Context, adminID uint, req dto.SubmissionRequest) (*entity.WatchlistEntry, error)
	UpdateEntry(ctx context.Context, adminID, id uint, req dto.UpdateEntryRequest) (*entity.WatchlistEntry, error)
	DeleteEntry(ctx context.Context, adminID, id uint) error
	// InvalidateGrouped drops the cached grouped view.
	InvalidateGrouped()
}

func NewWatchlistService(
	entries repository.WatchlistRepository,
	users repository.UserRepository,
	publisher repository.EventPublisher,
	readCache *cache.Cache,
	log *logger.Logger,
) WatchlistService {
	return &watchlistService{
		entries:   entries,
		users:     users,
		publisher: publisher,
		cache:     readCache,
		logger:    log,
	}
}

type watchlistService struct {
	entries   repository.WatchlistRepository
	users     repository.UserRepository
	publisher repository.EventPublisher
	cache     *cache.Cache
	logger    *logger.Logger
}

// GroupBySector buckets entries by sector then term, each bucket sorted by symbol.
// Entries with equal symbols keep their input order.
func GroupBySector(entries []entity.WatchlistEntry) dto.GroupedWatchlist {
	grouped := dto.GroupedWatchlist{}
	for _, e := range entries {
		group := grouped[e.Sector]
		switch e.Term {
		case entity.TermLong:
			group.Long = append(group.Long, e)
		case entity.TermShort:
			group.Short = append(group.Short, e)
		default:
			continue
		}
		grouped[e.Sector] = group
	}

	for sector, group := range grouped {
		sortBySymbol(group.Long)
		sortBySymbol(group.Short)
		if group.Long == nil {
			group.Long = []entity.WatchlistEntry{}
		}
		if group.Short == nil {
			group.Short = []entity.WatchlistEntry{}
		}
		grouped[sector] = group
	}
	return grouped
}

func sortBySymbol(entries []entity.WatchlistEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Symbol < entries[j].Symbol
	})
}

func (s *watchlistService) GetGrouped(ctx context.Context) (dto.GroupedWatchlist, error) {
	if cached, ok := s.cache.Get(common.CacheKeyWatchlistGrouped); ok {
		return cached.(dto.GroupedWatchlist), nil
	}

	entries, err := s.entries.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load watchlist", logger.ErrorField(err))
		return nil, err
	}
	grouped := GroupBySector(entries)
	s.cache.Set(common.CacheKeyWatchlistGrouped, grouped, cache.DefaultExpiration)
	return grouped, nil
}

func (s *watchlistService) ListEntries(ctx context.Context) ([]entity.WatchlistEntry, error) {
	return s.entries.FindAll(ctx)
}

func (s *watchlistService) GetEntry(ctx context.Context, id uint) (*entity.WatchlistEntry, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "watchlist entry", id)
	}
	return entry, nil
}

func (s *watchlistService) AddEntry(ctx context.Context, adminID uint, req dto.SubmissionRequest) (*entity.WatchlistEntry, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	draft, err := normalizeDraft(req)
	if err != nil {
		return nil, err
	}

	entry := &entity.WatchlistEntry{
		Symbol:      draft.Symbol,
		CompanyName: draft.CompanyName,
		Sector:      draft.Sector,
		Term:        draft.Term,
		Notes:       draft.Notes,
		TargetPrice: draft.TargetPrice,
		AddedBy:     adminID,
		AddedAt:     time.Now().UTC(),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to add watchlist entry", logger.ErrorField(err), logger.StringField("symbol", entry.Symbol))
		return nil, err
	}

	s.changed(ctx)
	return entry, nil
}

func (s *watchlistService) UpdateEntry(ctx context.Context, adminID, id uint, req dto.UpdateEntryRequest) (*entity.WatchlistEntry, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.CompanyName != nil {
		name := strings.TrimSpace(*req.CompanyName)
		if name == "" {
			return nil, apperror.Validation("company name cannot be empty")
		}
		fields["company_name"] = name
	}
	if req.Sector != nil {
		sector := strings.TrimSpace(*req.Sector)
		if sector == "" {
			return nil, apperror.Validation("sector cannot be empty")
		}
		fields["sector"] = sector
	}
	if req.Term != nil {
		if !req.Term.Valid() {
			return nil, apperror.Validation("term must be long or short")
		}
		fields["term"] = *req.Term
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.TargetPrice != nil {
		if req.TargetPrice.IsNegative() {
			return nil, apperror.Validation("target price cannot be negative")
		}
		fields["target_price"] = *req.TargetPrice
	}
	if req.CurrentPrice != nil {
		if req.CurrentPrice.IsNegative() {
			return nil, apperror.Validation("current price cannot be negative")
		}
		fields["current_price"] = *req.CurrentPrice
		fields["price_updated_at"] = time.Now().UTC()
	}

	if len(fields) > 0 {
		if err := s.entries.UpdateFields(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("watchlist entry %d not found", id)
			}
			s.logger.Error("Failed to update watchlist entry", logger.ErrorField(err), logger.UintField("entry_id", id))
			return nil, err
		}
		s.changed(ctx)
	}
	return s.GetEntry(ctx, id)
}

func (s *watchlistService) DeleteEntry(ctx context.Context, adminID, id uint) error {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return err
	}
	n, err := s.entries.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete watchlist entry", logger.ErrorField(err), logger.UintField("entry_id", id))
		return err
	}
	if n == 0 {
		return apperror.NotFound("watchlist entry %d not found", id)
	}
	s.changed(ctx)
	return nil
}

func (s *watchlistService) InvalidateGrouped() {
	s.cache.Delete(common.CacheKeyWatchlistGrouped)
}

// changed invalidates the local view and tells other processes to do the same.
func (s *watchlistService) changed(ctx context.Context) {
	s.InvalidateGrouped()
	if err := s.publisher.Publish(ctx, common.EventWatchlistUpdated, 0, struct{}{}); err != nil {
		s.logger.Warn("Failed to publish watchlist update", logger.ErrorField(err))
	}
}

// normalizeDraft trims and upper-cases a proposed entry and checks required fields.
func normalizeDraft(req dto.SubmissionRequest) (dto.SubmissionRequest, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.Sector = strings.TrimSpace(req.Sector)
	req.Notes = strings.TrimSpace(req.Notes)

	switch {
	case req.Symbol == "":
		return req, apperror.Validation("symbol is required")
	case req.CompanyName == "":
		return req, apperror.Validation("company name is required")
	case req.Sector == "":
		return req, apperror.Validation("sector is required")
	case !req.Term.Valid():
		return req, apperror.Validation("term must be long or short")
	case req.TargetPrice.Valid && req.TargetPrice.Decimal.IsNegative():
		return req, apperror.Validation("target price cannot be negative")
	}
	return req, nil
}
