package log

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"obra/internal/telemetry"
)

type ctxKey struct{}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger stored in ctx, or the default
// logger for the app component.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return WithComponent(ComponentApp)
}

// Middleware stores a per-request logger in the request context. When
// requestID is set, every line the handlers log carries the request id and
// the trace id assigned by the outer tracing middleware.
func Middleware(logger *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger
			if requestID != nil {
				l = l.With(FieldRequestID, requestID(r))
			}
			if id := telemetry.TraceID(r.Context()); id != "" {
				l = l.With(FieldTraceID, id)
			}
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), l)))
		})
	}
}

// RequestLogger writes the arrival and completion lines of a request.
type RequestLogger struct {
	logger *Logger
}

func NewRequestLogger(logger *Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// Started logs an incoming request.
func (rl *RequestLogger) Started(ctx context.Context, r *http.Request, clientIP string) {
	fields := requestFields(r, clientIP).
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer"))
	rl.logger.DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// Completed logs the outcome of a request. Client errors are warnings and
// server errors are errors.
func (rl *RequestLogger) Completed(ctx context.Context, r *http.Request, status int, elapsed time.Duration, clientIP string) {
	fields := requestFields(r, clientIP).
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(status, elapsed.Milliseconds(), status < 400)
	rl.logger.Logger.Log(ctx, levelFor(status), "HTTP request completed",
		rl.logger.args(fields.ToSlice())...)
}

func requestFields(r *http.Request, clientIP string) LogFields {
	fields := NewFields().WithClientIP(clientIP)
	if view, ok := strings.CutPrefix(r.URL.Path, "/api/views/"); ok && view != "" {
		fields[FieldView] = view
	}
	if id := telemetry.TraceID(r.Context()); id != "" {
		fields[FieldTraceID] = id
	}
	return fields
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
