package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skywardva/fleetboard/internal/api"
	"github.com/skywardva/fleetboard/internal/config"
	"github.com/skywardva/fleetboard/internal/tracker"
	"github.com/skywardva/fleetboard/internal/websocket"
	"github.com/skywardva/fleetboard/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Fleetboard server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Live API client serves all three fetcher roles
	liveClient := tracker.NewClient(
		cfg.Telemetry.BaseURL,
		cfg.Telemetry.APIKey,
		cfg.Telemetry.SessionID,
		time.Duration(cfg.Telemetry.RequestTimeoutSeconds)*time.Second,
		log,
	)

	wsServer := websocket.NewServer(log)
	go wsServer.Run()

	snapshotStore := tracker.NewSnapshotStore(
		time.Duration(cfg.Tracker.SnapshotTTLMinutes)*time.Minute,
		log,
	)
	planCache := tracker.NewPlanCache(
		cfg.Tracker.PlanCacheMaxEntries,
		time.Duration(cfg.Tracker.PlanCacheTTLMinutes)*time.Minute,
		log,
	)

	fleetService := tracker.NewService(
		snapshotStore,
		planCache,
		liveClient,
		liveClient,
		liveClient,
		tracker.FilterCriteria{
			Type:  tracker.FilterType(cfg.Tracker.FilterType),
			Value: cfg.Tracker.FilterValue,
		},
		cfg.Tracker.PageSize,
		cfg.Tracker.OperatorName,
		wsServer,
		log,
	)

	router := api.NewRouter(fleetService, wsServer, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", addr), logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}

	log.Info("Server fully stopped")
}
