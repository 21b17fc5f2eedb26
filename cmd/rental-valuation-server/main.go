package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iwvelando/rental-valuation/internal/cache"
	"github.com/iwvelando/rental-valuation/internal/config"
	"github.com/iwvelando/rental-valuation/internal/logging"
	"github.com/iwvelando/rental-valuation/internal/server"
	"github.com/iwvelando/rental-valuation/internal/storage"
	"github.com/iwvelando/rental-valuation/pkg/constants"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := config.ResolvePolicy(cfg.Policy); err != nil {
		logger.Fatal("invalid policy configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	store, err := storage.NewSQLiteStore(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to open analysis store",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = store.Close()
	}()

	var evalCache cache.Cache
	if cfg.RedisAddress != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddress, cfg.CacheTTL, logger)
		defer func() {
			_ = redisCache.Close()
		}()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable; evaluations will not be cached until it recovers",
				zap.String("op", "main"),
				zap.String("address", cfg.RedisAddress),
				zap.Error(err),
			)
		}
		cancel()
		evalCache = redisCache
	} else if cfg.CacheTTL > 0 {
		evalCache = cache.NewMemoryCache(cfg.CacheTTL)
	}

	gin.SetMode(gin.ReleaseMode)
	handler := server.NewHandler(server.Options{
		Logger:      logger,
		Store:       store,
		Cache:       evalCache,
		Policy:      cfg.Policy,
		MaxBodySize: cfg.BodySizeBytes(),
		Version:     version,
	})

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	case sig := <-quit:
		logger.Info("shutting down server",
			zap.String("op", "main"),
			zap.String("signal", sig.String()),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
