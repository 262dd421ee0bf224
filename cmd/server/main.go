package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/repairlens/backend/config"
	httpDelivery "github.com/repairlens/backend/internal/delivery/http"
	"github.com/repairlens/backend/internal/domain"
	"github.com/repairlens/backend/internal/infrastructure/cache"
	"github.com/repairlens/backend/internal/infrastructure/vpic"
	"github.com/repairlens/backend/internal/infrastructure/websearch"
	"github.com/repairlens/backend/internal/retry"
	"github.com/repairlens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting RepairLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Cache backend
	var repo domain.CacheRepository
	if cfg.Cache.Type == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		repo = redisCache
		log.Printf("Connected to Redis at %s", cfg.Cache.RedisURL)
	} else {
		repo = cache.NewMemoryCache()
	}
	cacheManager := usecase.NewCacheManager(repo)

	// Shared retry policy for all outbound provider calls
	policy := retry.Policy{
		MaxAttempts: cfg.Search.MaxAttempts,
		BaseDelay:   cfg.Search.BackoffBase,
		Factor:      2,
		MaxJitter:   250 * time.Millisecond,
	}

	// VIN decode client
	decoder := vpic.NewClient(cfg.Decoder.BaseURL, policy)
	if cfg.Server.Environment == "development" {
		decoder.SetDebug(true)
	}
	log.Printf("VIN decoder: %s", cfg.Decoder.BaseURL)

	// Search providers
	providers := make([]domain.SearchProvider, 0, len(cfg.Search.Providers))
	for _, p := range cfg.Search.Providers {
		providers = append(providers, websearch.NewClient(websearch.Config{
			Name:        p.Name,
			BaseURL:     p.BaseURL,
			APIKey:      p.APIKey,
			CallTimeout: cfg.Search.CallTimeout,
		}, policy))
		log.Printf("Search provider: %s (%s)", p.Name, p.BaseURL)
	}

	// Usecase layer
	scorer := usecase.NewScorer(usecase.ScorerConfig{
		Tier1Base: cfg.Confidence.Tier1Base,
		Tier2Base: cfg.Confidence.Tier2Base,
		Tier3Base: cfg.Confidence.Tier3Base,
	})
	executor := usecase.NewSearchExecutor(providers, scorer, usecase.ExecutorConfig{
		MinUsableResults:   cfg.Search.MinUsableResults,
		MaxResultsPerQuery: cfg.Search.MaxResultsPerQuery,
	})
	resolver := usecase.NewVehicleResolver(cacheManager, decoder)
	engine := usecase.NewEngine(resolver, cacheManager, executor, scorer, usecase.EngineConfig{
		Debug: cfg.Server.Environment == "development",
	})

	log.Printf("Confidence bases: tier1=%.0f tier2=%.0f tier3=%.0f",
		cfg.Confidence.Tier1Base, cfg.Confidence.Tier2Base, cfg.Confidence.Tier3Base)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(engine)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
