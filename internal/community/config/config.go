package config

import (
	"time"

	"golang-stock-circle/pkg/config"
)

// Auth holds session token settings.
type Auth struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// Plaid holds brokerage aggregator credentials.
type Plaid struct {
	BaseURL             string   `mapstructure:"base_url"`
	ClientID            string   `mapstructure:"client_id"`
	Secret              string   `mapstructure:"secret"`
	ClientName          string   `mapstructure:"client_name"`
	Products            []string `mapstructure:"products"`
	CountryCodes        []string `mapstructure:"country_codes"`
	MaxRequestPerMinute int      `mapstructure:"max_request_per_minute"`
}

// PriceFeed holds quote provider settings.
type PriceFeed struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// NewsFeed holds RSS sources for market headlines.
type NewsFeed struct {
	URLs        []string      `mapstructure:"urls"`
	MaxArticles int           `mapstructure:"max_articles"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Cache holds in-process read cache settings.
type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	PriceTTL          time.Duration `mapstructure:"price_ttl"`
}

// Worker holds cron expressions for background jobs.
type Worker struct {
	PriceRefreshCron  string        `mapstructure:"price_refresh_cron"`
	BrokerageSyncCron string        `mapstructure:"brokerage_sync_cron"`
	JobTimeout        time.Duration `mapstructure:"job_timeout"`
}

// Config holds the full configuration shared by the api and worker services.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Auth      Auth            `mapstructure:"auth"`
	Plaid     Plaid           `mapstructure:"plaid"`
	PriceFeed PriceFeed       `mapstructure:"price_feed"`
	NewsFeed  NewsFeed        `mapstructure:"news_feed"`
	Telegram  Telegram        `mapstructure:"telegram"`
	Cache     Cache           `mapstructure:"cache"`
	Worker    Worker          `mapstructure:"worker"`
}

// Load loads the service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.PriceFeed.MaxRequestPerMinute <= 0 {
		c.PriceFeed.MaxRequestPerMinute = 60
	}
	if c.PriceFeed.Timeout == 0 {
		c.PriceFeed.Timeout = 10 * time.Second
	}
	if c.Plaid.MaxRequestPerMinute <= 0 {
		c.Plaid.MaxRequestPerMinute = 120
	}
	if c.NewsFeed.MaxArticles <= 0 {
		c.NewsFeed.MaxArticles = 50
	}
	if c.NewsFeed.CacheTTL == 0 {
		c.NewsFeed.CacheTTL = 10 * time.Minute
	}
	if c.NewsFeed.Timeout == 0 {
		c.NewsFeed.Timeout = 10 * time.Second
	}
	if c.Cache.DefaultExpiration == 0 {
		c.Cache.DefaultExpiration = 5 * time.Minute
	}
	if c.Cache.CleanupInterval == 0 {
		c.Cache.CleanupInterval = 10 * time.Minute
	}
	if c.Cache.PriceTTL == 0 {
		c.Cache.PriceTTL = 24 * time.Hour
	}
	if c.Worker.JobTimeout == 0 {
		c.Worker.JobTimeout = 10 * time.Minute
	}
	if c.Redis.StreamMaxLen == 0 {
		c.Redis.StreamMaxLen = 10000
	}
}
