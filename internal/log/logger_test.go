package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
)

func jsonLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Level: level, Component: ComponentApp, Output: buf, JSON: true})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{" INFO ", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_StampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelDebug).WithComponent(ComponentReport)

	logger.Info("monthly report built", FieldAccountID, int64(7))
	logger.Debug("cache miss")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 2)
	assert.Equal(t, ComponentReport, recs[0][FieldComponent])
	assert.EqualValues(t, 7, recs[0][FieldAccountID])
	assert.Equal(t, "DEBUG", recs[1]["level"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "shown", recs[0]["msg"])
}

func TestFromContext(t *testing.T) {
	fallback := FromContext(context.Background())
	assert.Equal(t, "unknown", fallback.Component())

	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelInfo)
	assert.Same(t, logger, FromContext(NewContext(context.Background(), logger)))
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelInfo)

	handler := Middleware(logger)(RequestIDMiddleware(func(r *http.Request) string {
		return r.Header.Get("X-Request-Id")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("handled")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/balances", nil)
	req.Header.Set("X-Request-Id", "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "req-42", recs[0][FieldRequestID])
}

func TestStructuredLogger_HTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			sl := NewStructuredLogger(jsonLogger(&buf, slog.LevelDebug))
			req := httptest.NewRequest(http.MethodGet, "/api/report?account_id=1", nil)

			sl.LogHTTPEnd(context.Background(), req, tt.status, 15*time.Millisecond, "10.0.0.1")

			recs := decodeLines(t, &buf)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.level, recs[0]["level"])
			assert.EqualValues(t, tt.status, recs[0][FieldStatusCode])
			assert.EqualValues(t, 15, recs[0][FieldDuration])
			assert.Equal(t, "account_id=1", recs[0][FieldQuery])
		})
	}
}

func TestStructuredLogger_LogTransaction(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(jsonLogger(&buf, slog.LevelInfo))
	cat := int64(4)

	sl.LogTransaction(context.Background(), OpCreate, core.Transaction{
		ID: 9, AccountID: 2, Amount: decimal.RequireFromString("-12.50"), CategoryID: &cat,
	})

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "Transaction created", recs[0]["msg"])
	assert.Equal(t, ComponentLedger, recs[0][FieldComponent])
	assert.Equal(t, "-12.5", recs[0][FieldAmount])
	assert.EqualValues(t, 4, recs[0][FieldCategoryID])
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "", ErrorType(nil))
	assert.Equal(t, ErrorTypeValidation, ErrorType(core.NewValidationError("month", core.ErrInvalidMonth)))
	assert.Equal(t, ErrorTypeNotFound, ErrorType(fmt.Errorf("transaction 3: %w", core.ErrNotFound)))
	assert.Equal(t, ErrorTypeTimeout, ErrorType(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.Equal(t, ErrorTypeInternal, ErrorType(errors.New("disk full")))
}

func TestStructuredLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(jsonLogger(&buf, slog.LevelInfo))

	sl.LogError(context.Background(), "export failed", errors.New("quota exceeded"), ComponentSheets, OpExport, NewFields().WithAccount(1))

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "quota exceeded", recs[0][FieldError])
	assert.Equal(t, ErrorTypeInternal, recs[0][FieldErrorType])
	assert.Equal(t, ComponentSheets, recs[0][FieldComponent])
	assert.EqualValues(t, 1, recs[0][FieldAccountID])
}
