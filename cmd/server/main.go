// Package main provides the REST API entry point for the PCOS CDS server.
// PostgreSQL and Redis are optional at startup: when either is unreachable
// the server logs a warning and degrades to in-memory operation.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/agent"
	"github.com/pcos-cds-mcp-server/internal/api"
	"github.com/pcos-cds-mcp-server/internal/cache"
	"github.com/pcos-cds-mcp-server/internal/config"
	"github.com/pcos-cds-mcp-server/internal/database"
	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/history"
	"github.com/pcos-cds-mcp-server/internal/repository"
	"github.com/pcos-cds-mcp-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting PCOS CDS server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Clinical care-pathway agents
	agents := agent.NewRegistry(logger, cfg.CDS)
	if err := agents.RegisterAll(); err != nil {
		log.Fatalf("Failed to register agents: %v", err)
	}
	if err := agents.Validate(); err != nil {
		log.Fatalf("Agent registry validation failed: %v", err)
	}

	// PostgreSQL backs lab result persistence and assessment history.
	// Without it the server still assesses, but nothing is recorded.
	var labResults *repository.LabResultRepository
	var store history.Store
	db, err := connectDatabase(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Warn("Database unavailable, persistence disabled")
	} else {
		defer db.Close()
		labResults = repository.NewLabResultRepository(db.Pool, logger)

		pgStore, err := history.NewPostgresStoreFromURL(database.ConnectionURL(cfg.Database))
		if err != nil {
			logger.WithError(err).Warn("Assessment history store unavailable")
		} else {
			defer pgStore.Close()
			store = pgStore
		}
	}

	// Response cache: memory tier always, Redis tier when reachable
	responses := buildResponseCache(cfg.Cache, logger)
	defer responses.Close()

	assessments := service.NewAssessmentService(logger, agents, store)

	// Create server
	server := api.NewServer(configManager, logger, agents, assessments, labResults, responses)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	logger.Info("Server stopped")
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	}

	return logger
}

// connectDatabase applies pending migrations and opens the connection pool.
func connectDatabase(ctx context.Context, cfg domain.DatabaseConfig, logger *logrus.Logger) (*database.DB, error) {
	migrationsPath := os.Getenv("PCOS_CDS_MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	if err := database.RunMigrations(ctx, cfg, migrationsPath, logger); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return database.NewConnection(ctx, cfg, logger)
}

// buildResponseCache assembles the tiered response cache. Redis failures are
// not fatal; the memory tier serves alone.
func buildResponseCache(cfg domain.CacheConfig, logger *logrus.Logger) cache.ResponseCache {
	memory, err := cache.NewMemoryCache(cfg.MemoryMaxItems, cfg.MemoryTTL)
	if err != nil {
		log.Fatalf("Failed to create memory cache: %v", err)
	}

	redis, err := cache.NewRedisCache(cfg)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, using memory cache only")
		return cache.NewTieredCache(logger, memory, nil)
	}

	return cache.NewTieredCache(logger, memory, redis)
}
