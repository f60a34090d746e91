// Package main provides the HTTP server for wdtable.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/wdtable/internal/app"
	"github.com/raphaelgruber/wdtable/internal/config"
	"github.com/raphaelgruber/wdtable/internal/server"
)

const version = "0.1.0"

func main() {
	// Parse flags
	wipeDB := flag.Bool("wipe", false, "wipe all stored records on startup (testing only)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, config.Levels(cfg.LogLevel))
	defer cleanup()
	slog.SetDefault(logger)

	logger.Info("wdtable-server starting",
		"version", version,
		"port", cfg.Port,
		"element_source", cfg.ElementSource,
		"nuclide_source", cfg.NuclideSource,
		"refresh", cfg.RefreshSink,
	)

	// Cancel on interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create the app with all dependencies
	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	a, err := app.New(setupCtx, cfg)
	cancel()
	if err != nil {
		logger.Error("failed to create app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Error("failed to close app", "error", err)
		}
	}()

	// Wipe database if requested (via flag or env var)
	if *wipeDB || os.Getenv("WDTABLE_WIPE_DB") == "true" {
		wipeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := a.WipeData(wipeCtx)
		cancel()
		if err != nil {
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
	}

	// Refresh jobs are optional
	jobs, err := a.Jobs(ctx, cfg.RefreshSink)
	switch {
	case errors.Is(err, app.ErrNoSink):
		logger.Info("refresh jobs disabled, set WDTABLE_REFRESH to enable")
	case err != nil:
		logger.Error("failed to create refresh jobs", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(server.Options{
		Tables:      a.Tables,
		Jobs:        jobs,
		Languages:   a.Client,
		DefaultLang: cfg.DefaultLang,
		Metrics:     a.Metrics,
		Registry:    a.Registry,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Run server (blocks until a signal arrives)
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
