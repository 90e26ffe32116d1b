package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giygas/adverse-events-api/config"
	"github.com/giygas/adverse-events-api/handlers"
	"github.com/giygas/adverse-events-api/health"
	"github.com/giygas/adverse-events-api/logging"
	"github.com/giygas/adverse-events-api/openfda"
	"github.com/giygas/adverse-events-api/scheduler"
	"github.com/giygas/adverse-events-api/server"
	"github.com/giygas/adverse-events-api/tools"
	"github.com/giygas/adverse-events-api/validation"
)

// loadEnv reads .env from the working directory, then from the executable's
// directory. A missing file is not an error: the environment may be set by
// the service manager.
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}
	ex, err := os.Executable()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logService := logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer func() {
		if err := logService.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
		}
	}()

	logging.Info("Configuration loaded", "env", cfg.Env.String(), "openfda", cfg.OpenFDABaseURL,
		"cache_ttl", cfg.CacheTTL.String(), "cache_max_entries", cfg.CacheMaxSize)

	throttle := openfda.NewThrottle(cfg.RequestDelay)
	fetcher := openfda.NewHTTPFetcher(cfg.OpenFDABaseURL, cfg.RequestTimeout, throttle)
	cache := openfda.NewCache(cfg.CacheMaxSize, cfg.CacheTTL, nil)
	client := openfda.NewClient(fetcher, cache)

	jobs := scheduler.NewScheduler(client, cache, cfg.WarmupDrugs, cfg.WarmupSchedule)
	if err := jobs.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	validator := validation.NewInputValidator()
	healthChecker := health.NewHealthChecker(fetcher.Status(), cache, jobs)
	httpHandler := handlers.NewHTTPHandler(client, validator, healthChecker)

	var mcpHandler http.Handler
	if cfg.MCPEnabled {
		mcpHandler = tools.NewServer(client, validator).Handler()
	}

	srv := server.NewServer(cfg, httpHandler, mcpHandler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		logging.Info("Shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		logging.Error("Server failed to start", "error", err)
		jobs.Stop()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	jobs.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}
