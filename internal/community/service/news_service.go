package service

import (
	"context"
	"errors"
	"sort"

	"golang-stock-circle/internal/community/config"
	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/common"
	"golang-stock-circle/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// NewsService serves market headlines merged from the configured feeds.
type NewsService interface {
	Headlines(ctx context.Context) ([]dto.Article, error)
}

func NewNewsService(cfg config.NewsFeed, feeds repository.NewsFeedRepository, readCache *cache.Cache, log *logger.Logger) NewsService {
	return &newsService{cfg: cfg, feeds: feeds, cache: readCache, logger: log}
}

type newsService struct {
	cfg    config.NewsFeed
	feeds  repository.NewsFeedRepository
	cache  *cache.Cache
	logger *logger.Logger
}

// Headlines returns articles newest first, deduplicated and capped.
// A failing feed is skipped; if every feed fails the result is an Upstream error.
func (s *newsService) Headlines(ctx context.Context) ([]dto.Article, error) {
	if cached, ok := s.cache.Get(common.CacheKeyHeadlines); ok {
		return cached.([]dto.Article), nil
	}
	if len(s.cfg.URLs) == 0 {
		return []dto.Article{}, nil
	}

	var (
		articles []dto.Article
		errs     []error
		seen     = map[string]bool{}
	)
	for _, url := range s.cfg.URLs {
		items, err := s.feeds.FetchFeed(ctx, url)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping news feed", logger.StringField("url", url), logger.ErrorField(err))
			errs = append(errs, err)
			continue
		}
		for _, item := range items {
			key := articleKey(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			articles = append(articles, item)
		}
	}
	if len(errs) == len(s.cfg.URLs) {
		return nil, apperror.Upstream("all news feeds failed", errors.Join(errs...))
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if s.cfg.MaxArticles > 0 && len(articles) > s.cfg.MaxArticles {
		articles = articles[:s.cfg.MaxArticles]
	}
	if articles == nil {
		articles = []dto.Article{}
	}

	s.cache.Set(common.CacheKeyHeadlines, articles, s.cfg.CacheTTL)
	return articles, nil
}

// articleKey identifies an article by link, or by source and title when the feed item has no link.
func articleKey(a dto.Article) string {
	if a.URL != "" {
		return "url:" + a.URL
	}
	return "title:" + a.Source + "\x00" + a.Title
}
