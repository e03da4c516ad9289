// Package daemon manages the process lifecycle: HTTP listeners, the
// two pipeline goroutines and graceful shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pixelpane/pixelpane/internal/config"
	"github.com/pixelpane/pixelpane/internal/log"
)

// ShutdownHook performs cleanup during graceful shutdown. Hooks run in
// reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// Runner is a long-running component driven by the manager (the
// producer loop, the display consumer, the collection watcher).
type Runner func(ctx context.Context) error

// Manager starts all servers and runners and blocks until shutdown.
type Manager struct {
	cfg     config.ServerConfig
	handler http.Handler
	logger  zerolog.Logger

	mu      sync.Mutex
	runners []namedRunner
	hooks   []namedHook
	started bool
}

type namedRunner struct {
	name string
	run  Runner
}

type namedHook struct {
	name string
	hook ShutdownHook
}

// NewManager creates a daemon manager serving the given control
// surface handler.
func NewManager(cfg config.ServerConfig, handler http.Handler) *Manager {
	return &Manager{
		cfg:     cfg,
		handler: handler,
		logger:  log.WithComponent("daemon"),
	}
}

// AddRunner registers a long-running component. Must be called before
// Start.
func (m *Manager) AddRunner(name string, run Runner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runners = append(m.runners, namedRunner{name: name, run: run})
}

// RegisterShutdownHook registers a cleanup function executed during
// shutdown, LIFO.
func (m *Manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, hook: hook})
}

// Start runs everything and blocks until ctx is cancelled or a
// component fails. Context cancellation is the normal shutdown path
// and is not reported as an error.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("manager already started")
	}
	m.started = true
	runners := m.runners
	m.mu.Unlock()

	m.logger.Info().
		Str("listen", m.cfg.ListenAddr).
		Str("metrics_listen", m.cfg.MetricsAddr).
		Msg("starting daemon manager")

	g, gctx := errgroup.WithContext(ctx)

	apiServer := &http.Server{
		Addr:         m.cfg.ListenAddr,
		Handler:      m.handler,
		ReadTimeout:  m.cfg.ReadTimeout,
		WriteTimeout: m.cfg.WriteTimeout,
	}
	g.Go(func() error { return m.serve(gctx, "api", apiServer) })

	if m.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{
			Addr:         m.cfg.MetricsAddr,
			Handler:      mux,
			ReadTimeout:  m.cfg.ReadTimeout,
			WriteTimeout: m.cfg.WriteTimeout,
		}
		g.Go(func() error { return m.serve(gctx, "metrics", metricsServer) })
	}

	for _, r := range runners {
		r := r
		g.Go(func() error {
			err := r.run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Error().Err(err).Str("runner", r.name).Msg("runner failed")
				return fmt.Errorf("runner %s: %w", r.name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	m.runHooks()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serve runs an HTTP server and shuts it down when ctx is cancelled.
func (m *Manager) serve(ctx context.Context, name string, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), m.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			m.logger.Warn().Err(err).Str("server", name).Msg("shutdown did not complete cleanly")
		}
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	}
}

func (m *Manager) runHooks() {
	m.mu.Lock()
	hooks := m.hooks
	m.mu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ShutdownTimeout)
		if err := h.hook(ctx); err != nil {
			m.logger.Warn().Err(err).Str("hook", h.name).Msg("shutdown hook failed")
		}
		cancel()
	}
}
