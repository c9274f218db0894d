// Package server assembles the API: configuration, storage, the parsing
// engine and the HTTP transport, plus graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
	"github.com/aguerraochoa/Speakance-sub000/internal/parsing"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/config"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/httpapi"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/repomanager"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	router http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	repos, err := newRepositoryManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	engine := parsing.NewEngine(newProvider(cfg), parsing.DefaultScoreConfig(), logger)
	secret := []byte(cfg.Auth.SecretKey)

	var storage *services.StorageService
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" {
		storage = services.NewStorageService(cfg)
	}

	api := httpapi.NewAPI(
		services.NewUserService(repos, secret, cfg.Auth.TokenValidity, cfg.Parsing.DailyVoiceLimit),
		services.NewParseService(repos, engine, nil, cfg.Parsing.AutoSaveThreshold, logger),
		services.NewExpenseService(repos),
		services.NewMetadataService(repos, logger),
		storage,
		logger,
	)

	return &App{
		config: cfg,
		logger: logger,
		repos:  repos,
		router: httpapi.NewRouter(api, secret),
	}, nil
}

func newRepositoryManager(cfg *config.Config) (repomanager.RepositoryManager, error) {
	if cfg.Storage.DatabaseDSN == "" {
		return repomanager.NewInMemoryRepositoryManager(), nil
	}
	return repomanager.NewPostgresRepositoryManager(cfg.Storage.DatabaseDSN)
}

// newProvider selects the AI extractor; an empty provider name means the
// deterministic rules run alone.
func newProvider(cfg *config.Config) parsing.Provider {
	switch cfg.Parsing.Provider {
	case "openai":
		return parsing.NewOpenAIExtractor(cfg.Parsing.APIKey, cfg.Parsing.BaseURL, cfg.Parsing.Model)
	case "anthropic":
		return parsing.NewAnthropicExtractor(cfg.Parsing.APIKey, cfg.Parsing.Model)
	default:
		return nil
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := app.repos.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	defer app.repos.Close()

	srv := &http.Server{
		Addr:    app.config.Server.Addr,
		Handler: app.router,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "server listening", "addr", app.config.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
