package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"saldo/internal/core"
	"saldo/internal/log"
)

// Error codes carried in the "code" field of error bodies.
const (
	CodeBadRequest  = "bad_request"
	CodeValidation  = "validation_error"
	CodeNotFound    = "not_found"
	CodeRateLimited = "rate_limited"
	CodeInternal    = "internal_error"
)

// maxBodyBytes caps request bodies; every payload is a handful of fields.
const maxBodyBytes = 64 << 10

// errMalformed marks requests whose syntax could not be read at all.
var errMalformed = errors.New("malformed request")

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and error body. Store failures are
// logged with their detail and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.URL.Path, nil)
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	switch {
	case errors.Is(err, errMalformed):
		return http.StatusBadRequest, errorBody{Error: err.Error(), Code: CodeBadRequest}
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Code: CodeValidation}
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: err.Error(), Code: CodeNotFound}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error", Code: CodeInternal}
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errMalformed, fmt.Sprintf(format, args...))
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return malformed("invalid JSON body: %v", err)
	}
	if dec.More() {
		return malformed("body must contain a single JSON object")
	}
	return nil
}

// queryInt parses an integer query parameter. A missing parameter yields
// def, or a validation error when required.
func queryInt(r *http.Request, name string, def int64, required bool) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		if required {
			return 0, core.NewValidationError(name, errors.New("required"))
		}
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, malformed("%s must be an integer", name)
	}
	return v, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, malformed("id must be an integer")
	}
	return id, nil
}
