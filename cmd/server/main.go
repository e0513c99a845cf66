package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/feastly/api"
	"github.com/example/feastly/pkg/config"
	"github.com/example/feastly/pkg/repository"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting feastly server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))

	ctx := context.Background()
	store := selectStore(ctx, cfg, logger)
	defer store.Close(ctx)

	// Optional catalog cache
	if cfg.Redis.Enabled {
		cache := repository.NewCache(&cfg.Redis)
		if err := cache.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed, continuing without cache", zap.Error(err))
		} else {
			logger.Info("Redis connected successfully")
			store = repository.NewCachedStore(store, cache, logger)
			defer cache.Close()
		}
	}

	// Seed static catalog data
	if cfg.Store.SeedPath != "" {
		data, err := os.ReadFile(cfg.Store.SeedPath)
		if err != nil {
			logger.Warn("Failed to read seed file", zap.String("path", cfg.Store.SeedPath), zap.Error(err))
		} else if err := repository.Seed(ctx, store, data); err != nil {
			logger.Warn("Failed to seed catalog", zap.Error(err))
		}
	}

	server := api.NewServer(cfg, store, logger)
	server.SetupRoutes()

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// selectStore picks the backend once at startup: MongoDB when it is
// configured and reachable, the JSON-file fallback otherwise. The
// choice is fixed for the life of the process.
func selectStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) repository.Store {
	if cfg.MongoDB.URI != "" {
		mongoStore, err := repository.NewMongoStore(&cfg.MongoDB, cfg.Orders, logger)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.MongoDB.PingTimeout)
			defer cancel()
			if err = mongoStore.Ping(pingCtx); err == nil {
				logger.Info("MongoDB connected, using durable backend",
					zap.String("database", cfg.MongoDB.Database))
				return mongoStore
			}
		}
		logger.Warn("MongoDB unreachable, falling back to file store", zap.Error(err))
	}

	logger.Info("Using JSON file store", zap.String("path", cfg.Store.FilePath))
	return repository.NewFileStore(cfg.Store.FilePath, cfg.Orders, logger)
}
