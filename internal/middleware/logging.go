package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every request with method, path, status, duration and
// the authenticated user when present.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if userID := GetUserID(r.Context()); userID != "" {
			attrs = append(attrs, "user_id", userID)
		}

		if rec.status >= 500 {
			slog.Error("Request failed", attrs...)
		} else if rec.status >= 400 {
			slog.Warn("Request rejected", attrs...)
		} else {
			slog.Info("Request completed", attrs...)
		}
	})
}
