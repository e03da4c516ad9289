package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpane/pixelpane/internal/config"
	"github.com/pixelpane/pixelpane/internal/frame"
	"github.com/pixelpane/pixelpane/internal/library"
	"github.com/pixelpane/pixelpane/internal/panel"
	"github.com/pixelpane/pixelpane/internal/player"
	"github.com/pixelpane/pixelpane/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *player.Controller) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "videos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "videos", "a.mjpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "videos", "b.mjpg"), []byte("x"), 0o644))

	store := storage.NewOS(root)
	pool := frame.NewPool(4, 4)
	gate := frame.NewGate()
	playerCfg := config.PlayerConfig{
		TickRate:       60,
		WaitFree:       5 * time.Millisecond,
		WaitFreeSwitch: 10 * time.Millisecond,
		StallStreaming: time.Second,
		StallStill:     time.Second,
		FPSInterval:    time.Second,
	}
	controller := player.NewController(playerCfg, store, pool, gate)
	consumer := player.NewConsumer(pool, gate, panel.NewMemory(4, 4), time.Second)

	lib := library.New(store, map[string]string{"videos": "videos"})
	require.NoError(t, lib.ScanAll())

	serverCfg := config.ServerConfig{ListenAddr: ":0", RateLimitRPM: 0}
	return NewServer(serverCfg, controller, consumer, lib), controller
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Routes(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusReportsIdle(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Routes(), http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Empty(t, st.Path)
	assert.Equal(t, "none", st.Mode)
	assert.False(t, st.Paused)
}

func TestOpenIsAcceptedNotApplied(t *testing.T) {
	s, controller := newTestServer(t)
	h := s.Routes()

	rec := doRequest(t, h, http.MethodPost, "/api/open", `{"path":"videos/a.mjpg"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// Acknowledged but not yet applied: no tick has run.
	assert.Empty(t, controller.Status().Path)
}

func TestOpenRejectsBadBody(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	assert.Equal(t, http.StatusBadRequest, doRequest(t, h, http.MethodPost, "/api/open", "{}").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, h, http.MethodPost, "/api/open", "not json").Code)
}

func TestCollectionAdvance(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()

	rec := doRequest(t, h, http.MethodPost, "/api/collections/videos/next", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/collections/videos/prev", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestCollectionUnknown(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Routes(), http.MethodPost, "/api/collections/nope/next", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPauseResumeStop(t *testing.T) {
	s, controller := newTestServer(t)
	h := s.Routes()

	assert.Equal(t, http.StatusAccepted, doRequest(t, h, http.MethodPost, "/api/pause", "").Code)
	assert.True(t, controller.Status().Paused)

	assert.Equal(t, http.StatusAccepted, doRequest(t, h, http.MethodPost, "/api/resume", "").Code)
	assert.False(t, controller.Status().Paused)

	assert.Equal(t, http.StatusAccepted, doRequest(t, h, http.MethodPost, "/api/stop", "").Code)
	assert.True(t, controller.Status().Paused, "stop enters the paused state")
}

func TestReopenAccepted(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Routes(), http.MethodPost, "/api/reopen", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Routes(), http.MethodGet, "/api/status", "")
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestRequestIDPreserved(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(HeaderRequestID, "my-id")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	assert.Equal(t, "my-id", rec.Header().Get(HeaderRequestID))
}
