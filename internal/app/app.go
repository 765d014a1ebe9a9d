// Package app initializes and holds long-lived application services,
// acting as a dependency injection container for the CLI.
package app

import (
	"fmt"
	"net/http"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Avinash9608/Furniture-sub006/internal/cache"
	"github.com/Avinash9608/Furniture-sub006/internal/client"
	"github.com/Avinash9608/Furniture-sub006/internal/config"
	"github.com/Avinash9608/Furniture-sub006/internal/endpoint"
	"github.com/Avinash9608/Furniture-sub006/internal/executor"
	"github.com/Avinash9608/Furniture-sub006/internal/id"
	"github.com/Avinash9608/Furniture-sub006/internal/ingest"
	"github.com/Avinash9608/Furniture-sub006/internal/logging"
)

// App holds the shared, long-lived services: logger, cache store,
// ingestion pipeline and the composed catalog client. It is built once at
// startup and handed to the commands that need it.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *cache.Store
	client   *client.Client
	pipeline *ingest.Pipeline
}

// New builds an App from configuration. It fails fast when any service
// cannot be constructed.
func New(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	fs := afero.NewOsFs()
	store := cache.New(fs, cfg.Cache.Path, nil, logger)

	exec := executor.New(&http.Client{}, executor.Config{
		AttemptTimeout: cfg.AttemptTimeout(),
		MaxAttempts:    cfg.HTTP.MaxRetries,
		BackoffBase:    cfg.BackoffBase(),
	}, logger)

	c := client.New(exec, store, client.Config{
		Origins: endpoint.Origins{
			Base:     cfg.API.BaseOrigin,
			Fallback: cfg.API.FallbackOrigin,
		},
		AdminToken:          cfg.API.AdminToken,
		SeparateAssetUpload: cfg.API.SeparateAssetUpload,
	}, logger)

	ids := id.New()
	previewer := ingest.NewFilePreviewer(fs, cfg.Upload.PreviewDir, ids, logger)
	pipeline := ingest.New(previewer, ids, logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		client:   c,
		pipeline: pipeline,
	}, nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Store returns the local cache store.
func (a *App) Store() *cache.Store { return a.store }

// Client returns the composed catalog client.
func (a *App) Client() *client.Client { return a.client }

// Pipeline returns the file ingestion pipeline.
func (a *App) Pipeline() *ingest.Pipeline { return a.pipeline }

// Close flushes buffered log entries.
func (a *App) Close() {
	// Sync on stderr regularly fails on Linux; nothing actionable.
	_ = a.logger.Sync()
}
