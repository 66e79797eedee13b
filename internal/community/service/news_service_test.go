package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-circle/internal/community/config"
	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func article(url string, hoursAgo int) dto.Article {
	return dto.Article{Title: url, URL: url, PublishedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(hoursAgo) * time.Hour)}
}

func TestNewsService_Headlines(t *testing.T) {
	feeds := &fakeNewsFeed{feeds: map[string][]dto.Article{
		"https://a.example/rss": {article("a1", 5), article("shared", 1)},
		"https://b.example/rss": {article("b1", 0), article("shared", 1), article("b2", 10)},
	}}
	cfg := config.NewsFeed{
		URLs:        []string{"https://a.example/rss", "https://down.example/rss", "https://b.example/rss"},
		MaxArticles: 3,
		CacheTTL:    time.Minute,
	}
	svc := NewNewsService(cfg, feeds, cache.New(time.Minute, time.Minute), logger.NewNop())

	articles, err := svc.Headlines(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, []string{"b1", "shared", "a1"}, []string{articles[0].URL, articles[1].URL, articles[2].URL})
	assert.Equal(t, 3, feeds.calls)

	_, err = svc.Headlines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, feeds.calls)
}

func TestNewsService_ArticlesWithoutLinks(t *testing.T) {
	noLink := func(source, title string, hoursAgo int) dto.Article {
		a := article("", hoursAgo)
		a.Source, a.Title = source, title
		return a
	}
	feeds := &fakeNewsFeed{feeds: map[string][]dto.Article{
		"https://a.example/rss": {noLink("A", "Fed holds", 1), noLink("A", "CPI cools", 2)},
		"https://b.example/rss": {noLink("B", "Fed holds", 3), noLink("A", "Fed holds", 1)},
	}}
	cfg := config.NewsFeed{URLs: []string{"https://a.example/rss", "https://b.example/rss"}, CacheTTL: time.Minute}
	svc := NewNewsService(cfg, feeds, cache.New(time.Minute, time.Minute), logger.NewNop())

	articles, err := svc.Headlines(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, []string{"Fed holds", "CPI cools", "Fed holds"},
		[]string{articles[0].Title, articles[1].Title, articles[2].Title})
	assert.Equal(t, "B", articles[2].Source)
}

func TestNewsService_AllFeedsFail(t *testing.T) {
	cfg := config.NewsFeed{URLs: []string{"https://down.example/rss"}, CacheTTL: time.Minute}
	svc := NewNewsService(cfg, &fakeNewsFeed{}, cache.New(time.Minute, time.Minute), logger.NewNop())

	_, err := svc.Headlines(context.Background())
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}

func TestNewsService_NoFeedsConfigured(t *testing.T) {
	svc := NewNewsService(config.NewsFeed{}, &fakeNewsFeed{}, cache.New(time.Minute, time.Minute), logger.NewNop())

	articles, err := svc.Headlines(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}
