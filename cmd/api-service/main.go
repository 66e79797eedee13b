package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-circle/internal/community/config"
	"golang-stock-circle/internal/community/delivery/consumer"
	delivery "golang-stock-circle/internal/community/delivery/http"
	"golang-stock-circle/internal/community/delivery/ws"
	_ "golang-stock-circle/internal/community/docs"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/internal/community/session"
	"golang-stock-circle/pkg/logger"
	"golang-stock-circle/pkg/postgres"
	"golang-stock-circle/pkg/redis"
	"golang-stock-circle/pkg/telegram"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the community API service",
	Run:   runServe,
}

var promoteCmd = &cobra.Command{
	Use:   "promote-admin [username]",
	Short: "Grants admin rights to an existing user",
	Args:  cobra.ExactArgs(1),
	Run:   runPromote,
}

var demote bool

func openDatabase(cfg *config.Config, appLogger *logger.Logger) *postgres.DB {
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
	return db
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

	appLogger.Info("Starting API Service", logger.StringField("name", cfg.App.Name))

	db := openDatabase(cfg, appLogger)
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

	readCache := cache.New(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	submissionRepo := repository.NewSubmissionRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	voteRepo := repository.NewVoteRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	calendarRepo := repository.NewCalendarRepository(db.DB)
	brokerageRepo := repository.NewBrokerageRepository(db.DB)
	runRepo := repository.NewRefreshRunRepository(db.DB)
	publisher := repository.NewEventStreamRepository(redisClient.Client, cfg.Redis.StreamMaxLen)
	priceCache := repository.NewPriceCache(redisClient.Client, cfg.Cache.PriceTTL)
	priceFeed := repository.NewPriceFeedRepository(cfg.PriceFeed, appLogger)
	plaidRepo := repository.NewPlaidRepository(cfg.Plaid, appLogger)
	newsRepo := repository.NewNewsFeedRepository(cfg.NewsFeed, appLogger)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, session.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), cfg.Auth.BcryptCost, appLogger)
	profileSvc := service.NewProfileService(userRepo, followRepo, cfg.Auth.BcryptCost, appLogger)
	watchlistSvc := service.NewWatchlistService(watchlistRepo, userRepo, publisher, readCache, appLogger)
	approvalSvc := service.NewApprovalService(submissionRepo, userRepo, watchlistSvc, publisher, notifier, appLogger)
	communitySvc := service.NewCommunityService(service.CommunityRepositories{
		Users:    userRepo,
		Posts:    postRepo,
		Comments: commentRepo,
		Likes:    likeRepo,
		Votes:    voteRepo,
	}, appLogger)
	messagingSvc := service.NewMessagingService(messageRepo, followRepo, userRepo, publisher, appLogger)
	calendarSvc := service.NewCalendarService(calendarRepo, userRepo, appLogger)
	brokerageSvc := service.NewBrokerageService(brokerageRepo, plaidRepo, runRepo, publisher, appLogger)
	priceSvc := service.NewPriceRefreshService(service.PriceRefreshDeps{
		Entries:   watchlistRepo,
		Users:     userRepo,
		Runs:      runRepo,
		Feed:      priceFeed,
		Prices:    priceCache,
		Watchlist: watchlistSvc,
		Publisher: publisher,
		Notifier:  notifier,
	}, appLogger)
	newsSvc := service.NewNewsService(cfg.NewsFeed, newsRepo, readCache, appLogger)
	runSvc := service.NewRefreshRunService(runRepo, userRepo, appLogger)

	// Realtime fan-out
	hub := ws.NewHub(cfg.API.AllowedOrigins, appLogger)
	defer hub.Close()
	eventConsumer := consumer.NewEventConsumer(redisClient.Client, hub, watchlistSvc, appLogger)
	eventConsumer.Start(ctx)

	e := delivery.NewServer(delivery.Handlers{
		Auth:      delivery.NewAuthHandler(authSvc, appLogger),
		Profile:   delivery.NewProfileHandler(profileSvc, appLogger),
		Watchlist: delivery.NewWatchlistHandler(watchlistSvc, approvalSvc, appLogger),
		Community: delivery.NewCommunityHandler(communitySvc, appLogger),
		Message:   delivery.NewMessageHandler(messagingSvc, appLogger),
		Calendar:  delivery.NewCalendarHandler(calendarSvc, appLogger),
		Brokerage: delivery.NewBrokerageHandler(brokerageSvc, appLogger),
		Market:    delivery.NewMarketHandler(newsSvc, priceSvc, runSvc, appLogger),
		WebSocket: delivery.NewWebSocketHandler(hub, appLogger),
	}, authSvc, cfg.API.AllowedOrigins, appLogger)

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownTimeout, err := time.ParseDuration(cfg.API.ShutdownTimeout)
	if err != nil || shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	eventConsumer.Stop()

	appLogger.Info("Server exiting")
}

func runPromote(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	db := openDatabase(cfg, appLogger)
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	authSvc := service.NewAuthService(repository.NewUserRepository(db.DB), session.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), cfg.Auth.BcryptCost, appLogger)
	if err := authSvc.SetAdmin(cmd.Context(), args[0], !demote); err != nil {
		appLogger.Fatal("Failed to update admin flag", logger.StringField("username", args[0]), logger.ErrorField(err))
	}
	appLogger.Info("Admin flag updated", logger.StringField("username", args[0]), logger.Field("is_admin", !demote))
}

// @title Stock Circle API
// @version 1.0
// @description Community stock tracking: curated watchlist, posts, messaging, calendar and brokerage holdings.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")
	promoteCmd.Flags().BoolVar(&demote, "revoke", false, "Revoke admin rights instead of granting them")

	rootCmd.AddCommand(serveCmd, promoteCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
