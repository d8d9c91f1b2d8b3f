package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"jobscout/internal/api/handlers"
	"jobscout/internal/api/routes"
	"jobscout/internal/background"
	"jobscout/internal/config"
	grpcserver "jobscout/internal/grpc/server"
	"jobscout/internal/logging"
	"jobscout/internal/mux"
	"jobscout/internal/provider"
	"jobscout/internal/session"
	"jobscout/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()
	logger.Info("Starting jobscout", map[string]interface{}{
		"version": handlers.Version,
		"storage": cfg.Storage.Backend,
	})

	if cfg.MissingAPIKey() {
		logger.Warn("JOBS_API_KEY is not set; provider requests will be rejected", map[string]interface{}{
			"base_url": cfg.Provider.BaseURL,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open saved jobs storage")
	}
	defer backend.Close()

	client := provider.NewClient(provider.ConfigFrom(cfg), logger)

	registry := session.NewRegistry(session.Deps{
		Searcher:      client,
		Fetcher:       client,
		Backend:       backend,
		BaseKey:       cfg.Storage.Key,
		NumPages:      client.NumPages(),
		DetailTimeout: cfg.Provider.Timeout,
		Logger:        logger,
	})
	defer registry.Close()

	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Enabled {
		grpcSrv = grpcserver.NewServer(logger)
	}

	// Housekeeping
	taskManager := background.NewManager(logger)
	if err := taskManager.Register(background.TaskSessionSweep, cfg.Sessions.SweepSchedule,
		background.SweepTask(registry, cfg.Sessions.IdleTimeout)); err != nil {
		logger.WithError(err).Fatal("Failed to schedule session sweep")
	}
	providerStatus := provider.NewStatusCache(client, cfg.Provider.StatusMaxAge)
	publish := func(st provider.ConnectionStatus) {
		providerStatus.Store(st)
		if grpcSrv != nil {
			grpcSrv.SetProviderStatus(st)
		}
	}
	if err := taskManager.Register(background.TaskProviderProbe, cfg.Sessions.ProbeSchedule,
		background.ProbeTask(client, publish)); err != nil {
		logger.WithError(err).Fatal("Failed to schedule provider probe")
	}
	if err := taskManager.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start task manager")
	}
	// first probe now rather than on the first tick
	go func() {
		if _, err := taskManager.RunNow(background.TaskProviderProbe); err != nil {
			logger.WithError(err).Warn("Initial provider probe failed")
		}
	}()

	e := routes.NewEcho()
	routes.SetupRoutes(e, routes.Deps{
		Config:         cfg,
		Sessions:       registry,
		Provider:       client,
		ProviderStatus: providerStatus,
		Health: handlers.HealthDeps{
			Storage:        backend,
			ProviderKeySet: !cfg.MissingAPIKey(),
			Sessions:       registry,
			Tasks:          taskManager,
		},
		Logger: logger,
	})

	m := mux.NewMultiplexer(cfg, grpcSrv, e, logger)
	if err := m.Start(cfg.Address()); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := taskManager.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error stopping task manager")
	}
	if err := m.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error stopping server")
	}

	logger.Info("Server shutdown complete")
}
