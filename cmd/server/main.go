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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/api"
	"github.com/ishanbais13-gif/stackiq-go/internal/api/handlers"
	"github.com/ishanbais13-gif/stackiq-go/internal/backtest"
	"github.com/ishanbais13-gif/stackiq-go/internal/cache"
	"github.com/ishanbais13-gif/stackiq-go/internal/config"
	"github.com/ishanbais13-gif/stackiq-go/internal/database"
	"github.com/ishanbais13-gif/stackiq-go/internal/features"
	"github.com/ishanbais13-gif/stackiq-go/internal/logging"
	"github.com/ishanbais13-gif/stackiq-go/internal/market"
	"github.com/ishanbais13-gif/stackiq-go/internal/middleware"
	"github.com/ishanbais13-gif/stackiq-go/internal/optimize"
	"github.com/ishanbais13-gif/stackiq-go/internal/services"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	provider := newProvider(cfg, logger)

	// Postgres persistence is optional. Without it the backtest endpoints
	// still run; they just cannot save or list runs.
	var db *database.PostgresDB
	var repo *database.RunRepository
	if cfg.Database.DatabaseURL != "" || cfg.Database.Host != "" {
		db, err = database.NewPostgresConnection(cfg.Database)
		if err != nil {
			logger.WithError(err).Warn("Postgres unavailable, run persistence disabled")
		} else if err := db.EnsureSchema(context.Background()); err != nil {
			logger.WithError(err).Warn("Schema setup failed, run persistence disabled")
			db.Close()
			db = nil
		} else {
			defer db.Close()
			repo = database.NewRunRepository(db.Pool)
		}
	}

	// Redis caching is optional as well; a miss just means every candle
	// request goes to the upstream provider.
	var redisClient *database.RedisClient
	if cfg.Redis.Host != "" {
		redisClient, err = database.NewRedisConnection(cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, candle caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
			ttl := time.Duration(cfg.Redis.CandleTTLMinutes) * time.Minute
			provider = cache.NewCachingProvider(provider, redisClient.Client, ttl, logger)
		}
	}

	builder := features.NewBuilder(provider, logger)
	runner := backtest.NewRunner(builder, logger)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	api.SetupRoutes(router, api.Dependencies{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Predict:  handlers.NewPredictHandler(services.NewPredictor(builder, logger), cfg.Engine),
		Backtest: handlers.NewBacktestHandler(runner, repo, cfg.Engine, logger),
		Optimize: handlers.NewOptimizeHandler(optimize.NewOptimizer(runner, logger), cfg.Engine, cfg.Optimizer),
		Runs:     handlers.NewRunsHandler(repo),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// newProvider assembles the market data provider chain: Finnhub as the
// primary source, with the Stooq quote fallback when enabled.
func newProvider(cfg *config.Config, logger *logrus.Logger) market.Provider {
	var provider market.Provider = market.NewFinnhubClient(&cfg.MarketData, logger)
	if cfg.MarketData.StooqFallback {
		provider = market.WithQuoteFallback(provider, market.NewStooqQuoteClient(logger), logger)
	}
	return provider
}
