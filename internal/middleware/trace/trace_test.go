package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/log"
)

func TestMiddleware_LogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Output: &buf})
	m := NewMiddleware(logger, func(r *http.Request) string { return "192.0.2.10" })

	var seenID string
	handler := chimw.RequestID(m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		log.FromContext(r.Context()).Info("inside handler")
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/balances", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.NotEmpty(t, seenID)
	out := buf.String()
	assert.Contains(t, out, "HTTP request started")
	assert.Contains(t, out, "HTTP request completed")
	assert.Contains(t, out, "request_id="+seenID)
	assert.Contains(t, out, "client_ip=192.0.2.10")
	assert.Equal(t, 1, strings.Count(out, "status_code=500"))
	assert.Equal(t, 1, strings.Count(out, "status_code=200"))

	metrics := m.GetMetrics()
	assert.EqualValues(t, 2, metrics.TotalRequests)
	assert.EqualValues(t, 1, metrics.ServerErrors)
}

func TestGetRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetRequestID(req.Context()))
}
