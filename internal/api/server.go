// Package api provides the HTTP control surface of the panel daemon.
// Every mutating endpoint is acknowledged as accepted, not applied:
// requests are queued toward the playback controller and take effect
// at the next safe point between frames.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/pixelpane/pixelpane/internal/config"
	"github.com/pixelpane/pixelpane/internal/library"
	"github.com/pixelpane/pixelpane/internal/player"
)

// Server routes control-surface requests to the playback controller.
type Server struct {
	cfg        config.ServerConfig
	controller *player.Controller
	consumer   *player.Consumer
	library    *library.Library
}

// NewServer creates the control-surface server.
func NewServer(cfg config.ServerConfig, c *player.Controller, d *player.Consumer, l *library.Library) *Server {
	return &Server{cfg: cfg, controller: c, consumer: d, library: l}
}

// Routes builds the chi router with the canonical middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(Logging)
	if s.cfg.RateLimitRPM > 0 {
		r.Use(httprate.Limit(
			s.cfg.RateLimitRPM,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/open", s.handleOpen)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)
		r.Post("/reopen", s.handleReopen)
		r.Post("/stop", s.handleStop)
		r.Route("/collections/{name}", func(r chi.Router) {
			r.Post("/next", s.handleNext)
			r.Post("/prev", s.handlePrev)
		})
	})
	return r
}
