package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/pixelpane/pixelpane/internal/log"
)

// HeaderRequestID carries the request correlation ID.
const HeaderRequestID = "X-Request-Id"

// RequestID adds a unique ID to every request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, reqID)
		ctx := log.ContextWithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recoverer keeps panics inside handlers from crashing the daemon.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				buf := make([]byte, 8192)
				n := runtime.Stack(buf, false)
				logger := log.WithComponentFromContext(r.Context(), "api")
				logger.Error().
					Str("event", "panic.recovered").
					Str("method", r.Method).
					Str(log.FieldPath, r.URL.Path).
					Interface("panic_value", rec).
					Str("stack_trace", string(buf[:n])).
					Msg("panic recovered in HTTP handler")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Logging emits one structured line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Info().
			Str("event", "http.request").
			Str("method", r.Method).
			Str(log.FieldPath, r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
