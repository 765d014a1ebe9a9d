// Package client composes the endpoint resolver, resilient executor, local
// cache and submission orchestrator into the catalog data-access surface
// the admin panel talks to.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Avinash9608/Furniture-sub006/internal/cache"
	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
	"github.com/Avinash9608/Furniture-sub006/internal/endpoint"
	"github.com/Avinash9608/Furniture-sub006/internal/executor"
	"github.com/Avinash9608/Furniture-sub006/internal/logging"
	"github.com/Avinash9608/Furniture-sub006/internal/submit"
)

// Config wires the client to a deployment.
type Config struct {
	Origins             endpoint.Origins
	AdminToken          string
	SeparateAssetUpload bool
}

// CategoryList is the result of a category read. FromCache marks lists
// served locally after the backend was exhausted, so callers can say
// "showing defaults" instead of passing stale data off as live.
type CategoryList struct {
	Categories []catalog.Entity
	FromCache  bool
	// Degraded additionally marks that local storage itself was
	// unreadable and only the seed set survived.
	Degraded bool
}

// Client is the catalog data-access layer.
type Client struct {
	exec   submit.Executor
	store  *cache.Store
	orch   *submit.Orchestrator
	cfg    Config
	logger *zap.Logger
}

// New constructs a Client.
func New(exec submit.Executor, store *cache.Store, cfg Config, logger *zap.Logger) *Client {
	logger = logging.Or(logger)
	orch := submit.New(exec, submit.Config{
		Origins:             cfg.Origins,
		SeparateAssetUpload: cfg.SeparateAssetUpload,
		AdminToken:          cfg.AdminToken,
	}, logger)
	return &Client{
		exec:   exec,
		store:  store,
		orch:   orch,
		cfg:    cfg,
		logger: logger,
	}
}

// ListCategories reads the category list from the backend, caching a
// successful read locally. When every candidate endpoint is exhausted it
// serves the cached set instead, flagged as FromCache. Auth failures are
// returned, never masked by cached data.
func (c *Client) ListCategories(ctx context.Context) (CategoryList, error) {
	op := endpoint.Operation{Kind: endpoint.KindListCategories}
	urls, err := endpoint.Resolve(op, c.cfg.Origins)
	if err != nil {
		return CategoryList{}, err
	}

	resp, err := c.exec.Execute(ctx, op.String(), urls, executor.RequestSpec{Method: http.MethodGet})
	if err != nil {
		if errors.Is(err, catalog.ErrUnauthorized) {
			return CategoryList{}, err
		}
		snap := c.store.Get()
		c.logger.Warn("category read exhausted all endpoints, serving cached set",
			zap.Int("cached", len(snap.Entities)),
			zap.Bool("cache_degraded", snap.Degraded),
			zap.Error(err),
		)
		return CategoryList{Categories: snap.Entities, FromCache: true, Degraded: snap.Degraded}, nil
	}

	var categories []catalog.Entity
	if err := json.Unmarshal(resp.Data, &categories); err != nil {
		return CategoryList{}, fmt.Errorf("decode categories: %w", err)
	}

	for _, e := range categories {
		if catalog.IsSeedID(e.ID) {
			continue
		}
		if err := c.store.Put(e); err != nil {
			// A cache write failing never fails the read.
			c.logger.Warn("cache write failed", zap.String("id", e.ID), zap.Error(err))
		}
	}
	return CategoryList{Categories: categories}, nil
}

// CreateCategory creates a category on the backend and caches it.
func (c *Client) CreateCategory(ctx context.Context, category catalog.Entity) (*catalog.Entity, error) {
	op := endpoint.Operation{Kind: endpoint.KindCreateCategory}
	urls, err := endpoint.Resolve(op, c.cfg.Origins)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(category)
	if err != nil {
		return nil, fmt.Errorf("encode category: %w", err)
	}

	header := http.Header{}
	if c.cfg.AdminToken != "" {
		header.Set("Authorization", "Bearer "+c.cfg.AdminToken)
	}

	resp, err := c.exec.Execute(ctx, op.String(), urls, executor.RequestSpec{
		Method:      http.MethodPost,
		ContentType: "application/json",
		Header:      header,
		Body:        body,
	})
	if err != nil {
		return nil, err
	}

	var created catalog.Entity
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		return nil, fmt.Errorf("decode created category: %w", err)
	}
	if err := c.store.Put(created); err != nil {
		c.logger.Warn("cache write failed", zap.String("id", created.ID), zap.Error(err))
	}
	return &created, nil
}

// SaveProduct creates or updates a product through the submission
// orchestrator. An empty form.ProductID creates.
func (c *Client) SaveProduct(ctx context.Context, form submit.FormState, candidates []*catalog.UploadCandidate) (*catalog.Entity, error) {
	return c.orch.Submit(ctx, form, candidates)
}
