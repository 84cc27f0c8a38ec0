package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/domain"
	"github.com/rakki194/nlrouter/internal/infra/catalog"
	"github.com/rakki194/nlrouter/internal/infra/httpapi"
	"github.com/rakki194/nlrouter/internal/infra/registry"
	"github.com/rakki194/nlrouter/internal/infra/routercache"
	"github.com/rakki194/nlrouter/internal/infra/scoring"
	"github.com/rakki194/nlrouter/internal/infra/store"
	"github.com/rakki194/nlrouter/internal/infra/suggest"
	"github.com/rakki194/nlrouter/internal/infra/telemetry"
)

// App wires the router's components together.
type App struct {
	logger *zap.Logger
}

type ServeConfig struct {
	ConfigPath    string
	ListenAddress string
}

type ValidateOptions struct {
	ConfigPath string
	Print      bool
	Out        io.Writer
}

func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		logger: logger.Named("app"),
	}
}

// Serve runs the router until ctx is canceled.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	provider, err := catalog.NewProvider(ctx, cfg.ConfigPath, a.logger)
	if err != nil {
		return err
	}
	cat := provider.Current()

	a.logger.Info("configuration loaded",
		zap.String("config", cfg.ConfigPath),
		zap.Int("tools", len(cat.Tools)),
	)

	reg := registry.New(a.logger)

	var toolStore *store.Store
	if cat.Runtime.StorePath != "" {
		toolStore, err = store.Open(cat.Runtime.StorePath, a.logger)
		if err != nil {
			return fmt.Errorf("open tool store: %w", err)
		}
		defer func() { _ = toolStore.Close() }()

		persisted, err := toolStore.Tools()
		if err != nil {
			return fmt.Errorf("load persisted tools: %w", err)
		}
		for _, tool := range persisted {
			if err := reg.Register(tool); err != nil {
				a.logger.Warn("persisted tool rejected", zap.String("tool", tool.Name), zap.Error(err))
			}
		}
	}

	// Config entries win over persisted state.
	if err := a.applyTools(reg, toolStore, cat.Tools); err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	metrics := telemetry.NewPrometheusMetrics(promRegistry)
	metrics.SetRegistrySize(reg.Size())

	tracker := telemetry.NewHealthTracker(nil)
	tracker.SetConfiguration(map[string]any{
		"cacheTTL":       cat.Runtime.CacheTTL.String(),
		"maxCacheSize":   cat.Runtime.MaxCacheSize,
		"maxSuggestions": cat.Runtime.MaxSuggestions,
		"minScore":       cat.Runtime.MinScore,
		"toolCount":      reg.Size(),
	})
	go tracker.Run(ctx.Done(), cat.Runtime.HealthCheckInterval)

	cache := routercache.New(cat.Runtime.CacheTTL, cat.Runtime.MaxCacheSize, nil)
	pipeline := suggest.NewPipeline(suggest.Config{
		Registry:       reg,
		Cache:          cache,
		Scorer:         scoring.NewScorer(cat.Runtime.Weights),
		Logger:         a.logger,
		Observers:      []suggest.Observer{tracker, metrics},
		MaxSuggestions: cat.Runtime.MaxSuggestions,
		MinScore:       cat.Runtime.MinScore,
	})

	go a.watchCatalog(ctx, provider, reg, toolStore, metrics, tracker)
	go a.runCacheJanitor(ctx, pipeline, cat.Runtime.CacheTTL)
	go a.consumeEvents(ctx, pipeline, metrics)

	addr := cfg.ListenAddress
	if addr == "" {
		addr = cat.Runtime.ListenAddress
	}

	server := httpapi.NewServer(httpapi.Config{
		Addr:     addr,
		Pipeline: pipeline,
		Registry: reg,
		Health:   tracker,
		Gatherer: promRegistry,
		Logger:   a.logger,
	})
	return server.Run(ctx)
}

// Validate loads a config and reports problems without serving.
func (a *App) Validate(ctx context.Context, opts ValidateOptions) error {
	loader := catalog.NewLoader(a.logger)
	cat, err := loader.Load(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	a.logger.Info("configuration validated",
		zap.String("config", opts.ConfigPath),
		zap.Int("tools", len(cat.Tools)),
	)

	if opts.Print && opts.Out != nil {
		dump, err := catalog.Dump(cat)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(opts.Out, dump); err != nil {
			return err
		}
	}
	return nil
}

// SuggestOnce evaluates a single request against a config without serving.
func (a *App) SuggestOnce(ctx context.Context, configPath string, req domain.SuggestRequest) (domain.SuggestResponse, error) {
	loader := catalog.NewLoader(a.logger)
	cat, err := loader.Load(ctx, configPath)
	if err != nil {
		return domain.SuggestResponse{}, err
	}

	reg := registry.New(a.logger)
	for _, tool := range cat.Tools {
		if err := reg.Register(tool); err != nil {
			return domain.SuggestResponse{}, err
		}
	}

	pipeline := suggest.NewPipeline(suggest.Config{
		Registry:       reg,
		Cache:          routercache.New(cat.Runtime.CacheTTL, cat.Runtime.MaxCacheSize, nil),
		Scorer:         scoring.NewScorer(cat.Runtime.Weights),
		Logger:         a.logger,
		MaxSuggestions: cat.Runtime.MaxSuggestions,
		MinScore:       cat.Runtime.MinScore,
	})
	return pipeline.Suggest(ctx, req)
}

func (a *App) applyTools(reg *registry.Registry, toolStore *store.Store, tools []domain.Tool) error {
	for _, tool := range tools {
		if err := reg.Register(tool); err != nil {
			return fmt.Errorf("register tool %q: %w", tool.Name, err)
		}
		if toolStore != nil {
			if err := toolStore.PutTool(tool); err != nil {
				a.logger.Warn("tool persist failed", zap.String("tool", tool.Name), zap.Error(err))
			}
		}
	}
	return nil
}

func (a *App) watchCatalog(ctx context.Context, provider *catalog.Provider, reg *registry.Registry, toolStore *store.Store, metrics *telemetry.PrometheusMetrics, tracker *telemetry.HealthTracker) {
	updates := provider.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			a.reconcileTools(reg, toolStore, update.Catalog.Tools)
			metrics.SetRegistrySize(reg.Size())
			tracker.SetConfiguration(map[string]any{
				"cacheTTL":       update.Catalog.Runtime.CacheTTL.String(),
				"maxCacheSize":   update.Catalog.Runtime.MaxCacheSize,
				"maxSuggestions": update.Catalog.Runtime.MaxSuggestions,
				"minScore":       update.Catalog.Runtime.MinScore,
				"toolCount":      reg.Size(),
			})
			a.logger.Info("catalog reloaded",
				zap.String("source", string(update.Source)),
				zap.Int("tools", len(update.Catalog.Tools)),
			)
		}
	}
}

// reconcileTools makes the registry match the reloaded tool list. Runtime
// settings (cache size, weights, listen address) take effect on restart.
func (a *App) reconcileTools(reg *registry.Registry, toolStore *store.Store, tools []domain.Tool) {
	keep := make(map[string]struct{}, len(tools))
	for _, tool := range tools {
		keep[tool.Name] = struct{}{}
		if err := reg.Register(tool); err != nil {
			a.logger.Warn("reloaded tool rejected", zap.String("tool", tool.Name), zap.Error(err))
			continue
		}
		if toolStore != nil {
			if err := toolStore.PutTool(tool); err != nil {
				a.logger.Warn("tool persist failed", zap.String("tool", tool.Name), zap.Error(err))
			}
		}
	}
	for _, existing := range reg.List() {
		if _, ok := keep[existing.Name]; ok {
			continue
		}
		reg.Unregister(existing.Name)
		if toolStore != nil {
			if err := toolStore.DeleteTool(existing.Name); err != nil {
				a.logger.Warn("tool delete failed", zap.String("tool", existing.Name), zap.Error(err))
			}
		}
	}
}

func (a *App) consumeEvents(ctx context.Context, pipeline *suggest.Pipeline, metrics *telemetry.PrometheusMetrics) {
	events := pipeline.Emitter().Subscribe(ctx)
	for event := range events {
		if event.Name == suggest.EventSuggestionComplete {
			metrics.ObserveSuggestionCount(event.Suggestions)
		}
		a.logger.Debug("pipeline event",
			telemetry.EventField(event.Name),
			telemetry.CacheKeyField(event.CacheKey),
			zap.String("requestId", event.RequestID),
		)
	}
}

func (a *App) runCacheJanitor(ctx context.Context, pipeline *suggest.Pipeline, ttl time.Duration) {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := pipeline.Cleanup(); removed > 0 {
				a.logger.Debug("cache cleanup", zap.Int("removed", removed))
			}
		}
	}
}
