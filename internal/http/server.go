// Package http serves the JSON API of the back office.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"obra/internal/log"
	"obra/internal/middleware/ratelimit"
	"obra/internal/middleware/security"
	"obra/internal/middleware/session"
	"obra/internal/middleware/trace"
	"obra/internal/services"
	"obra/internal/status"
	"obra/internal/storage"
	"obra/internal/todoist"
)

// TaskLister is the task list provider.
type TaskLister interface {
	Tasks(ctx context.Context, today string) ([]todoist.Task, error)
}

// TransitionLister reads the transition journal.
type TransitionLister interface {
	ListTransitions(ctx context.Context, pageID string, limit int) ([]storage.Transition, error)
}

// Deps are the collaborators of the server. Tasks and Journal may be nil.
type Deps struct {
	Views   *services.Views
	Entries *services.Entries
	Status  *status.Service
	Tasks   TaskLister
	Journal TransitionLister

	// Ready reports whether the server can do useful work. Nil means
	// always ready.
	Ready func(ctx context.Context) error

	AdminPIN           string
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	deps        Deps
	gate        *session.Gate
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	logger      *log.Logger

	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		deps:        deps,
		gate:        session.NewGate(deps.AdminPIN, "/api/", "/api/login", "/api/logout"),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector:    security.NewDetector(),
		logger:      log.WithComponent(log.ComponentHTTP),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("POST /api/reverse-status", s.handleReverseStatus)
	mux.HandleFunc("POST /api/mark-reimbursed", s.handleMarkReimbursed)
	mux.HandleFunc("POST /api/pay-worker", s.handlePayWorker)

	mux.HandleFunc("GET /api/lookup", s.handleLookup)
	mux.HandleFunc("GET /api/cashflow", s.handleCashflow)
	mux.HandleFunc("GET /api/todoist", s.handleTodoist)
	mux.HandleFunc("GET /api/views/{view}", s.handleView)
	mux.HandleFunc("GET /api/transitions", s.handleTransitions)

	var h http.Handler = mux
	h = s.gate.Middleware(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
	})(h)
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})(h)
	h = log.Middleware(s.logger, trace.RequestID)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background work and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
