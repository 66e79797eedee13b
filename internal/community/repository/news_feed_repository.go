package repository

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"golang-stock-circle/internal/community/config"
	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const maxSummaryLen = 400

// NewsFeedRepository reads headlines from an RSS or Atom feed.
type NewsFeedRepository interface {
	FetchFeed(ctx context.Context, feedURL string) ([]dto.Article, error)
}

type newsFeedRepository struct {
	log    *logger.Logger
	parser *gofeed.Parser
}

func NewNewsFeedRepository(cfg config.NewsFeed, log *logger.Logger) NewsFeedRepository {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.Timeout}
	parser.UserAgent = "golang-stock-circle/1.0"
	return &newsFeedRepository{log: log, parser: parser}
}

func (r *newsFeedRepository) FetchFeed(ctx context.Context, feedURL string) ([]dto.Article, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to parse news feed", logger.StringField("url", feedURL), logger.ErrorField(err))
		return nil, err
	}

	source := feed.Title
	if source == "" {
		if u, err := url.Parse(feedURL); err == nil {
			source = u.Hostname()
		}
	}

	articles := make([]dto.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		article := dto.Article{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  source,
			Summary: plainText(item.Description),
		}
		switch {
		case item.PublishedParsed != nil:
			article.PublishedAt = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			article.PublishedAt = item.UpdatedParsed.UTC()
		}
		articles = append(articles, article)
	}

	r.log.DebugContext(ctx, "Fetched news feed", logger.StringField("url", feedURL), logger.IntField("articles", len(articles)))
	return articles, nil
}

// plainText strips markup from a feed description and truncates it.
func plainText(html string) string {
	if html == "" {
		return ""
	}
	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > maxSummaryLen {
		return string(runes[:maxSummaryLen]) + "…"
	}
	return text
}
