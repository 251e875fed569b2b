package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/farmstand/backend/config"
	httpDelivery "github.com/farmstand/backend/internal/delivery/http"
	"github.com/farmstand/backend/internal/domain"
	"github.com/farmstand/backend/internal/infrastructure/cache"
	"github.com/farmstand/backend/internal/infrastructure/gemini"
	"github.com/farmstand/backend/internal/infrastructure/metrics"
	"github.com/farmstand/backend/internal/infrastructure/produce"
	"github.com/farmstand/backend/internal/logging"
	"github.com/farmstand/backend/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting Farmstand backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache_type", cfg.Cache.Type))

	m := metrics.New()

	// Initialize infrastructure dependencies
	var sellerCache domain.CacheRepository
	if cfg.Cache.Type == "memory" {
		memoryCache, err := cache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.CleanupInterval)
		if err != nil {
			return fmt.Errorf("create cache: %w", err)
		}
		defer memoryCache.Close()
		sellerCache = memoryCache
		logger.Info("seller cache enabled",
			zap.Int("size", cfg.Cache.Size),
			zap.Duration("ttl", cfg.Cache.TTL))
	}

	produceClient := produce.NewClient(cfg.Produce.BaseURL, logger,
		produce.WithTimeout(cfg.Produce.Timeout),
		produce.WithRateLimit(cfg.Produce.RatePerSecond, cfg.Produce.Burst),
		produce.WithMaxRetries(cfg.Produce.MaxRetries),
	)
	produceClient.SetObserver(m)

	// Enable debug mode in development environment
	if cfg.Produce.Debug || cfg.Server.Environment == "development" {
		produceClient.SetDebug(true)
		logger.Info("produce client debug mode enabled")
	}
	logger.Info("produce service configured", zap.String("base_url", cfg.Produce.BaseURL))

	generator, err := gemini.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	if err != nil {
		return fmt.Errorf("create recipe generator: %w", err)
	}

	// Initialize usecase layer
	parser := usecase.NewRecipeParser(usecase.ParserConfig{Lenient: cfg.Parser.Lenient})

	recipeService := usecase.NewRecipeService(generator, parser, logger)
	recipeService.SetRecorder(m)

	estimateService := usecase.NewEstimateService(
		sellerCache,
		produceClient,
		usecase.EstimateServiceConfig{
			CacheTTL:       cfg.Cache.TTL,
			ListingLimit:   cfg.Produce.ListingLimit,
			MaxConcurrency: cfg.Aggregation.MaxConcurrency,
			Timeout:        cfg.Aggregation.Timeout,
		},
		logger,
	)
	estimateService.SetRecorder(m)

	listingService := usecase.NewListingService(produceClient, cfg.Produce.ListingLimit, logger)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(recipeService, estimateService, listingService, logger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger, m)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
