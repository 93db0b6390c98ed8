package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"forumregistrations/internal/domain"
)

const requestInfoKey contextKey = "request_info"

// requestInfo is filled in by inner handlers so the access log, which runs
// outside the mux, can report who made the call.
type requestInfo struct {
	principal *domain.Principal
}

// notePrincipal records the authenticated caller for the access log.
func notePrincipal(ctx context.Context, p *domain.Principal) {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.principal = p
	}
}

// statusRecorder captures the status code and bytes written.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (n int, err error) {
	n, err = w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// LoggingMiddleware writes one access log line per request: route, status,
// size, duration, the caller's user id and the forum or attendee the route
// addresses. 5xx responses log at warn. Bodies are never logged.
func LoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &requestInfo{}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(context.WithValue(r.Context(), requestInfoKey, info))
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", r.Pattern,
			"status", rec.status,
			"bytes", rec.written,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if info.principal != nil {
			attrs = append(attrs, "user_id", info.principal.UserID)
		}
		if id := r.PathValue("forumID"); id != "" {
			attrs = append(attrs, "forum_id", id)
		}
		if id := r.PathValue("attendeeID"); id != "" {
			attrs = append(attrs, "attendee_id", id)
		}
		logger.Log(r.Context(), level, "request", attrs...)
	})
}
