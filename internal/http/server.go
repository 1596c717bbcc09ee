// Package http exposes the transaction service as a JSON API.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	applog "expensemate/internal/log"
	"expensemate/internal/middleware/ratelimit"
	"expensemate/internal/middleware/security"
	"expensemate/internal/services"
)

// OwnerHeader carries the identity of the caller. Requests without it act
// on behalf of the guest owner.
const OwnerHeader = "X-User-Email"

const maxBodyBytes = 64 << 10

type Config struct {
	Addr               string
	RateLimitPerMinute int
	GuestOwner         string
}

type Server struct {
	http.Server

	svc      *services.TransactionService
	guest    string
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	started  time.Time

	shutdownOnce sync.Once
}

func NewServer(cfg Config, svc *services.TransactionService, logger *applog.Logger) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		svc:      svc,
		guest:    strings.TrimSpace(cfg.GuestOwner),
		logger:   logger.WithComponent(applog.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(applog.Middleware(s.logger, requestID, security.ClientIP))
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(security.ClientIP, s.rateLimited))

		r.Get("/categories", s.handleCategories)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Delete("/", s.handleDeleteAllTransactions)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/balance", s.handleBalance)
		r.Get("/stats/week", s.handleWeekly)

		r.Get("/budget", s.handleGetBudget)
		r.Put("/budget", s.handleSetBudget)
		r.Delete("/budget", s.handleRemoveBudget)
	})
	return r
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// owner resolves the caller from OwnerHeader, falling back to the guest.
func (s *Server) owner(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(OwnerHeader)); v != "" {
		return v
	}
	return s.guest
}

// Shutdown stops the rate limiter sweep and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
