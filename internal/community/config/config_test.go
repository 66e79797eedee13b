package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
app:
  name: stock-circle
logger:
  level: info
database:
  host: localhost
  port: 5432
auth:
  jwt_secret: secret
  token_ttl: 2h
price_feed:
  base_url: https://query1.finance.yahoo.com
  max_request_per_minute: 30
news_feed:
  urls:
    - https://example.com/rss
worker:
  price_refresh_cron: "*/15 * * * *"
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "stock-circle", cfg.App.Name)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 30, cfg.PriceFeed.MaxRequestPerMinute)
	assert.Equal(t, []string{"https://example.com/rss"}, cfg.NewsFeed.URLs)
	assert.Equal(t, "*/15 * * * *", cfg.Worker.PriceRefreshCron)

	// defaults
	assert.Equal(t, 50, cfg.NewsFeed.MaxArticles)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultExpiration)
	assert.Equal(t, int64(10000), cfg.Redis.StreamMaxLen)
	assert.Equal(t, 24*time.Hour, cfg.Cache.PriceTTL)
}
