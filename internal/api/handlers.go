package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pixelpane/pixelpane/internal/log"
	"github.com/pixelpane/pixelpane/internal/metrics"
)

type statusResponse struct {
	Path   string  `json:"path"`
	Mode   string  `json:"mode"`
	Paused bool    `json:"paused"`
	FPS    float64 `json:"fps"`
}

type openRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.controller.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		Path:   st.Path,
		Mode:   string(st.Mode),
		Paused: st.Paused,
		FPS:    s.consumer.FPS(),
	})
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"path\": \"...\"}")
		return
	}
	s.controller.RequestOpen(req.Path)
	metrics.IncSwitchRequest("open")
	writeAccepted(w)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.advance(w, r, "next")
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	s.advance(w, r, "prev")
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request, direction string) {
	name := chi.URLParam(r, "name")
	var (
		path string
		err  error
	)
	if direction == "next" {
		path, err = s.library.Next(name)
	} else {
		path, err = s.library.Prev(name)
	}
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Warn().Err(err).
			Str("event", "api.advance_failed").
			Str(log.FieldCollection, name).
			Msg("collection advance failed")
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.controller.RequestOpen(path)
	metrics.IncSwitchRequest(direction)
	writeAccepted(w)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.controller.Pause()
	writeAccepted(w)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.controller.Resume()
	writeAccepted(w)
}

func (s *Server) handleReopen(w http.ResponseWriter, r *http.Request) {
	s.controller.RequestReopen()
	metrics.IncSwitchRequest("reopen")
	writeAccepted(w)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.controller.Stop()
	writeAccepted(w)
}
