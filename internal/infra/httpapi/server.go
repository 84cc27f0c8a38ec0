package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/infra/registry"
	"github.com/rakki194/nlrouter/internal/infra/suggest"
	"github.com/rakki194/nlrouter/internal/infra/telemetry"
)

const shutdownTimeout = 5 * time.Second

// Config wires the server's collaborators.
type Config struct {
	Addr     string
	Pipeline *suggest.Pipeline
	Registry *registry.Registry
	Health   *telemetry.HealthTracker
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server exposes the suggestion pipeline over HTTP.
type Server struct {
	addr     string
	pipeline *suggest.Pipeline
	registry *registry.Registry
	health   *telemetry.HealthTracker
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewServer builds a server from its collaborators.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		addr:     cfg.Addr,
		pipeline: cfg.Pipeline,
		registry: cfg.Registry,
		health:   cfg.Health,
		gatherer: gatherer,
		logger:   logger.Named("httpapi"),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/suggest", s.handleSuggest)
	mux.HandleFunc("GET /v1/tools", s.handleTools)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("http server failed to start: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", zap.Error(err))
			return err
		}
		s.logger.Info("http server stopped")
		return nil
	}
}
