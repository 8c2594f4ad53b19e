// Package http exposes the ledger and the aggregation engine as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/middleware/ratelimit"
	"saldo/internal/middleware/security"
	"saldo/internal/middleware/trace"
	"saldo/internal/report"
	"saldo/internal/services"
)

type Config struct {
	Addr               string
	AppName            string
	RequestTimeout     time.Duration
	RateLimitPerMinute int
}

// Server wraps http.Server with the API routes and the middleware state
// that has to be stopped on shutdown.
type Server struct {
	http.Server

	appName string
	ledger  *services.LedgerService
	store   ledger.Store
	engine  *report.Engine
	logger  *log.Logger

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer builds the router. svc handles every write; store backs the
// engine and the readiness check.
func NewServer(cfg Config, svc *services.LedgerService, store ledger.Store, logger *log.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		appName:  cfg.AppName,
		ledger:   svc,
		store:    store,
		engine:   report.NewEngine(store),
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

func (s *Server) routes(timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.tracer.Handler)
	r.Use(chimw.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Handler)
	r.Use(chimw.Timeout(timeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found", Code: CodeNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Code: CodeBadRequest})
	})

	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleLive)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	limitWrites := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", s.handleListAccounts)
		r.With(limitWrites).Post("/", s.handleCreateAccount)
		r.Get("/balances", s.handleAllBalances)
		r.Get("/{id}/balance", s.handleBalance)
		r.Get("/{id}/timeseries", s.handleTimeseries)
		r.Get("/{id}/income-expense", s.handleIncomeExpense)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handleListCategories)
		r.With(limitWrites).Post("/", s.handleCreateCategory)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", s.handleListTransactions)
		r.Get("/filter", s.handleFilterTransactions)
		r.Get("/{id}", s.handleGetTransaction)
		r.Group(func(r chi.Router) {
			r.Use(limitWrites)
			r.Post("/", s.handleCreateTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/monthly", s.handleMonthlyReport)
		r.Get("/chart-data", s.handleChartData)
	})

	return r
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later", Code: CodeRateLimited})
}

// Shutdown stops accepting requests and stops the limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
