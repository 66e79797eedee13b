package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-circle/internal/community/config"
	"golang-stock-circle/internal/community/delivery/scheduler"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/logger"
	"golang-stock-circle/pkg/postgres"
	"golang-stock-circle/pkg/redis"
	"golang-stock-circle/pkg/telegram"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the background worker (price refresh and holdings sync)",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Worker Service", logger.StringField("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	brokerageRepo := repository.NewBrokerageRepository(db.DB)
	runRepo := repository.NewRefreshRunRepository(db.DB)
	publisher := repository.NewEventStreamRepository(redisClient.Client, cfg.Redis.StreamMaxLen)

	// Initialize services
	watchlistSvc := service.NewWatchlistService(
		watchlistRepo,
		userRepo,
		publisher,
		cache.New(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		appLogger,
	)
	priceSvc := service.NewPriceRefreshService(service.PriceRefreshDeps{
		Entries:   watchlistRepo,
		Users:     userRepo,
		Runs:      runRepo,
		Feed:      repository.NewPriceFeedRepository(cfg.PriceFeed, appLogger),
		Prices:    repository.NewPriceCache(redisClient.Client, cfg.Cache.PriceTTL),
		Watchlist: watchlistSvc,
		Publisher: publisher,
		Notifier:  notifier,
	}, appLogger)
	brokerageSvc := service.NewBrokerageService(
		brokerageRepo,
		repository.NewPlaidRepository(cfg.Plaid, appLogger),
		runRepo,
		publisher,
		appLogger,
	)

	// Register jobs
	jobs := scheduler.New(cfg.Worker.JobTimeout, appLogger)
	if err := jobs.Register("price_refresh", cfg.Worker.PriceRefreshCron, func(ctx context.Context) error {
		_, err := priceSvc.Refresh(ctx, entity.TriggerSchedule, nil)
		return err
	}); err != nil {
		appLogger.Fatal("Failed to register price refresh job", logger.ErrorField(err))
	}
	if err := jobs.Register("holdings_sync", cfg.Worker.BrokerageSyncCron, func(ctx context.Context) error {
		_, err := brokerageSvc.SyncAll(ctx, entity.TriggerSchedule)
		return err
	}); err != nil {
		appLogger.Fatal("Failed to register holdings sync job", logger.ErrorField(err))
	}

	jobs.Start(ctx)
	appLogger.Info("Worker service started. Waiting for schedules...")

	<-ctx.Done()

	appLogger.Info("Shutting down worker service...")
	jobs.Stop()
	appLogger.Info("Worker service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "worker-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-worker.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing worker-service CLI: %s\n", err)
		os.Exit(1)
	}
}
