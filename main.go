package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clearmeat/assessment/internal/assessment"
	"github.com/clearmeat/assessment/internal/cache"
	"github.com/clearmeat/assessment/internal/cache/assessmentcache"
	"github.com/clearmeat/assessment/internal/config"
	"github.com/clearmeat/assessment/internal/credstore"
	"github.com/clearmeat/assessment/internal/fetcher"
	"github.com/clearmeat/assessment/internal/http"
	"github.com/clearmeat/assessment/internal/logger"
	"github.com/clearmeat/assessment/internal/models"
	"github.com/clearmeat/assessment/internal/ratelimit"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection for telemetry logging
	db, err := logger.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to telemetry database: %v", err)
	}
	defer db.Close()

	// Initialize logger
	appLogger := logger.NewDatabaseLogger(db)
	defer appLogger.Close()

	startupCtx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())

	appLogger.LogInfo(startupCtx, logger.OpServerStart, "Starting Product Assessment API", map[string]interface{}{
		"version": "1.0.0",
		"config": map[string]interface{}{
			"port":         cfg.Port,
			"durable_tier": cfg.DurableTier,
			"cache_ttl":    cfg.CacheTTL.Seconds(),
			"max_retries":  cfg.MaxRetries,
		},
	})

	// Initialize the durable cache tier and the two-tier assessment cache
	durable, err := initializeDurableTier(cfg)
	if err != nil {
		appLogger.LogError(startupCtx, "cache_init", "", "Failed to initialize durable cache tier", err, models.LogSeverityHigh, nil)
		log.Fatalf("Failed to initialize durable cache tier: %v", err)
	}

	memory := cache.NewMemoryTier(cfg.MemoryCacheEntries)
	assessmentCache := assessmentcache.New(memory, durable, cfg.CacheTTL)

	// Initialize credential storage
	secrets, err := credstore.NewFileSecretStore(cfg.CredentialDir)
	if err != nil {
		appLogger.LogError(startupCtx, "credstore_init", "", "Failed to initialize secret store", err, models.LogSeverityHigh, nil)
		log.Fatalf("Failed to initialize secret store: %v", err)
	}
	creds := credstore.New(secrets, credstore.NewValidator(cfg.ExpectedIssuer))

	// Initialize the fetch pipeline
	assessmentFetcher := fetcher.NewHTTPFetcher(cfg.APIBaseURL, creds, cfg.RequestTimeout, cfg.AssessmentTimeout)
	accessService := assessment.NewService(
		assessmentFetcher,
		assessmentCache,
		creds,
		appLogger,
		cfg.MaxRetries,
		cfg.RetryBaseDelay,
	)

	rateLimiter := ratelimit.NewTwoTierRateLimiter(
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
	)

	// Initialize HTTP facade
	handler := http.NewHandler(accessService, appLogger)
	addr := ":" + cfg.Port
	server := http.NewServer(
		addr,
		handler,
		appLogger,
		rateLimiter,
		cfg.ServerReadTimeout,
		cfg.ServerWriteTimeout,
	)

	// Periodic cache maintenance; Get already self-heals, this just keeps
	// disk usage bounded between reads
	maintenanceCtx, stopMaintenance := context.WithCancel(context.Background())
	go runCacheMaintenance(maintenanceCtx, accessService, cfg.CacheTTL)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLogger.LogError(context.Background(), logger.OpServerStart, "", "Server failed to start", err, models.LogSeverityHigh, map[string]interface{}{"addr": addr})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	fmt.Printf("Product Assessment API started on %s\n", addr)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down server...")
	stopMaintenance()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.LogError(ctx, logger.OpServerShutdown, "", "Server shutdown error", err, models.LogSeverityMedium, nil)
		log.Printf("Server shutdown error: %v", err)
	} else {
		appLogger.LogInfo(ctx, logger.OpServerShutdown, "Server shutdown completed successfully", nil)
	}
}

func initializeDurableTier(cfg *config.Config) (cache.DurableTier, error) {
	switch cfg.DurableTier {
	case "redis":
		return cache.NewRedisTier(cfg.RedisURL)
	case "disk":
		return cache.NewDiskTier(cfg.CacheDir)
	default:
		return nil, fmt.Errorf("unsupported durable tier: %s", cfg.DurableTier)
	}
}

func runCacheMaintenance(ctx context.Context, access assessment.AccessService, ttl time.Duration) {
	interval := ttl / 4
	if interval > time.Hour {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = access.PurgeExpiredAssessments(logger.WithLogEvent(ctx, logger.NewInternalLogEvent()))
		}
	}
}
