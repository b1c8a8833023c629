package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"email-catalog-go/internal/cache"
	"email-catalog-go/internal/config"
	"email-catalog-go/internal/db"
	"email-catalog-go/internal/handler"
	"email-catalog-go/internal/metrics"
	"email-catalog-go/internal/repository"
	"email-catalog-go/internal/router"
	"email-catalog-go/internal/scheduler"
	"email-catalog-go/internal/service"
)

func main() {
	// Configure logging
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Email Catalog Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}

	// Initialize database
	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize metrics
	m := metrics.NewMetrics()

	// Initialize repository
	repo := repository.New(dbConn)

	// Initialize the optional Redis search cache
	var searchCache *cache.SearchCache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logrus.Warnf("Redis unreachable, search cache disabled: %v", err)
			redisClient.Close()
			redisClient = nil
		} else {
			searchCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			logrus.Info("Search cache enabled")
		}
		cancel()
	}

	// Initialize services. A typed-nil cache must not reach the services,
	// hence the explicit interface assignment.
	companyService := service.NewCompanyService(repo, m)
	var invalidator service.SearchInvalidator
	var resultCache service.SearchResultCache
	if searchCache != nil {
		invalidator = searchCache
		resultCache = searchCache
	}
	ingestService := service.NewIngestService(repo, m, invalidator)
	searchService := service.NewSearchService(repo, m, resultCache)

	// Initialize stats scheduler
	statsScheduler := scheduler.NewStatsScheduler(&cfg.Stats, repo, m)

	// Initialize HTTP handlers
	handlers := handler.NewHandlers(dbConn, companyService, ingestService, searchService)

	// Setup HTTP server
	r := router.SetupRouter(handlers)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start stats scheduler
	if err := statsScheduler.Start(); err != nil {
		logrus.Fatalf("Failed to start stats scheduler: %v", err)
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop stats scheduler
	if err := statsScheduler.Stop(); err != nil {
		logrus.Errorf("Failed to stop stats scheduler: %v", err)
	}
	statsScheduler.Wait()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	// Close redis client
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logrus.Errorf("Failed to close redis client: %v", err)
		}
	}

	logrus.Info("Server stopped gracefully")
}
