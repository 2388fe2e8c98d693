package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/smartlens/backend/config"
	httpDelivery "github.com/smartlens/backend/internal/delivery/http"
	"github.com/smartlens/backend/internal/infrastructure/cache"
	"github.com/smartlens/backend/internal/infrastructure/openbeautyfacts"
	"github.com/smartlens/backend/internal/infrastructure/openfoodfacts"
	"github.com/smartlens/backend/internal/infrastructure/openproductsfacts"
	"github.com/smartlens/backend/internal/infrastructure/usda"
	"github.com/smartlens/backend/internal/usecase"
	"github.com/smartlens/backend/internal/vocab"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting smartlens backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.Duration("cacheTTL", cfg.Cache.TTL))

	vocabulary, err := vocab.Load(cfg.Vocab.Path)
	if err != nil {
		logger.Fatal("failed to load vocabulary", zap.Error(err))
	}

	store, err := cache.NewSQLite(cfg.Cache.Path)
	if err != nil {
		logger.Fatal("failed to open cache database", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(context.Background()); err != nil {
		logger.Fatal("failed to migrate cache database", zap.Error(err))
	}

	foodClient := openfoodfacts.NewClient(cfg.Sources.FoodBaseURL, logger)
	beautyClient := openbeautyfacts.NewClient(cfg.Sources.BeautyBaseURL, vocabulary, logger)
	productsClient := openproductsfacts.NewClient(cfg.Sources.ProductsBaseURL, logger)
	usdaClient := usda.NewClient(cfg.Sources.USDAAPIKey, cfg.Sources.USDABaseURL, vocabulary, logger)

	scoreService := usecase.NewScoreService()
	warningService := usecase.NewWarningService()
	resolver := usecase.NewResolverService(
		store,
		foodClient,
		usdaClient,
		beautyClient,
		productsClient,
		scoreService,
		warningService,
		usecase.ResolverConfig{CacheTTL: cfg.Cache.TTL},
		logger,
	)
	alternatives := usecase.NewAlternativesService(foodClient, scoreService, logger)

	go sweepExpired(context.Background(), store, cfg.Cache.TTL, cfg.Cache.SweepInterval, logger)

	handler := httpDelivery.NewHandler(resolver, alternatives, store, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// sweepExpired periodically deletes cache rows older than the TTL. Reads
// never evict, so this sweep is the only place entries are destroyed.
func sweepExpired(ctx context.Context, store *cache.SQLiteStore, ttl, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-ttl)
			swept, err := store.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				logger.Warn("cache sweep failed", zap.Error(err))
				continue
			}
			if swept > 0 {
				logger.Info("cache sweep", zap.Int64("deleted", swept))
			}
		}
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
