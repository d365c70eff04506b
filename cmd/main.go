package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/database"
	"github.com/imyashkale/bigpanda-notifier/internal/handlers"
	"github.com/imyashkale/bigpanda-notifier/internal/logger"
	"github.com/imyashkale/bigpanda-notifier/internal/repository"
	"github.com/imyashkale/bigpanda-notifier/internal/router"
	"github.com/imyashkale/bigpanda-notifier/internal/services"
)

func main() {
	ctx := context.Background()

	// Load application configuration
	cfg := config.New()
	logger.Init(cfg.LogLevel)
	logger.Info("Configuration loaded successfully")

	settingsRepo, err := newSettingsRepository(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize settings storage: %v", err)
	}

	settingsService := services.NewSettingsService(settingsRepo)
	if err := settingsService.Load(ctx, cfg.Seed); err != nil {
		logger.Fatalf("Failed to load BigPanda settings: %v", err)
	}

	client := services.NewBigPandaClient(cfg.Proxy)
	notifier := services.NewNotifier(client)
	if cfg.Proxy.Enabled() {
		logger.WithField("proxy_host", cfg.Proxy.Host).Info("BigPanda calls routed through proxy")
	}

	r := router.Setup(
		cfg.AdminJWTSecret,
		handlers.NewHealthHandler(settingsService),
		handlers.NewEventHandler(notifier, settingsService),
		handlers.NewSettingsHandler(settingsService),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Graceful shutdown failed: %v", err)
		}
	}()

	logger.Infof("Starting server on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("Server stopped")
}

func newSettingsRepository(ctx context.Context, cfg *config.Config) (repository.SettingsRepository, error) {
	if cfg.SettingsBackend == config.BackendDynamoDB {
		dbConfig := database.NewConfig(cfg)
		logger.Infof("Initializing DynamoDB client for table: %s in region: %s", dbConfig.TableName, dbConfig.Region)

		dbClient, err := database.NewClient(ctx, dbConfig)
		if err != nil {
			return nil, err
		}
		return repository.NewSettingsRepository(database.NewSettingsOperations(dbClient, dbClient.TableName)), nil
	}

	logger.Infof("Using settings file: %s", cfg.SettingsFile)
	return repository.NewSettingsRepository(database.NewSettingsFile(cfg.SettingsFile)), nil
}
