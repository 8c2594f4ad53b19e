// Package trace logs every HTTP request with its request ID and keeps
// running request metrics.
package trace

import (
	"context"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"saldo/internal/log"
)

// Middleware handles request tracing and logging. It expects chi's
// RequestID middleware to run first.
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.Logger
	sl        *log.StructuredLogger

	mu      sync.Mutex
	metrics Metrics
}

type Metrics struct {
	TotalRequests int64
	ServerErrors  int64
	// AverageResponseTime is the running mean in microseconds.
	AverageResponseTime int64
}

func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
		sl:        log.NewStructuredLogger(logger),
	}
}

// Handler logs the request start and completion and stores a request-scoped
// logger in the context for handlers to pick up with log.FromContext.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := GetRequestID(r.Context())
		reqLogger := m.logger.With(log.FieldRequestID, requestID)
		ctx := log.NewContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		m.sl.LogHTTPStart(ctx, r, clientIP)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		m.record(status, duration)

		log.NewStructuredLogger(reqLogger).LogHTTPEnd(ctx, r, status, duration, clientIP)
	})
}

func (m *Middleware) record(status int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.TotalRequests++
	if status >= 500 {
		m.metrics.ServerErrors++
	}
	n := m.metrics.TotalRequests
	m.metrics.AverageResponseTime += (d.Microseconds() - m.metrics.AverageResponseTime) / n
}

// GetRequestID returns the ID chi assigned to the request, if any.
func GetRequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

func (m *Middleware) GetMetrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}
