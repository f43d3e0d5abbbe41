package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/routecost/pkg/config"
	"mercator-hq/routecost/pkg/service"
	"mercator-hq/routecost/pkg/telemetry/health"
	"mercator-hq/routecost/pkg/telemetry/metrics"
	"mercator-hq/routecost/pkg/telemetry/tracing"
)

// Option configures a Server.
type Option func(*Server)

// WithMetrics exposes collector on the configured metrics path and records
// cache metrics to it.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Server) { s.metrics = collector }
}

// WithHealth serves liveness and readiness from checker.
func WithHealth(checker *health.Checker) Option {
	return func(s *Server) { s.health = checker }
}

// WithTracer starts a server span per request.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = tracer }
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server is the HTTP front end for a service.Service.
type Server struct {
	config      config.ServerConfig
	query       config.QueryConfig
	metricsPath string

	svc     *service.Service
	cache   *responseCache
	metrics *metrics.Collector
	health  *health.Checker
	tracer  *tracing.Tracer
	logger  *slog.Logger

	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server for svc. The response cache is cleared every
// time svc applies a new configuration.
func NewServer(cfg *config.Config, svc *service.Service, opts ...Option) (*Server, error) {
	s := &Server{
		config:       cfg.Server,
		query:        cfg.History.Query,
		metricsPath:  cfg.Telemetry.Metrics.Path,
		svc:          svc,
		logger:       slog.Default().With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		s.health = health.New(0)
	}
	if s.metricsPath == "" {
		s.metricsPath = config.DefaultPrometheusPath
	}

	if cfg.Server.Cache.Enabled {
		cache, err := newResponseCache(cfg.Server.Cache, s.metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}
		s.cache = cache
		svc.OnUpdate(cache.Clear)
	}

	return s, nil
}

// Start listens on the configured address and blocks until ctx is
// cancelled, Stop is called or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", ln.Addr().String())

		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}
		if s.cache != nil {
			s.cache.Close()
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
