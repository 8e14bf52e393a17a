package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/depeele/summarization/internal/anchor"
	"github.com/depeele/summarization/internal/fetch"
	"github.com/depeele/summarization/internal/highlight"
	"github.com/depeele/summarization/internal/library"
	"github.com/depeele/summarization/internal/logger"
	"github.com/depeele/summarization/internal/notes"
	"github.com/depeele/summarization/internal/parser"
	"github.com/depeele/summarization/internal/pipeline"
)

var (
	errBadRequest = errors.New("bad request")
	errNoPrefetch = errors.New("prefetch is not configured")
)

// statusFor maps package sentinel errors to HTTP status codes.
func statusFor(err error) int {
	var se *fetch.StatusError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, anchor.ErrInvalidSelection),
		errors.Is(err, anchor.ErrEmptySelection),
		errors.Is(err, anchor.ErrMalformedAnchor),
		errors.Is(err, notes.ErrEmptyText),
		errors.Is(err, highlight.ErrNoID):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrNotLoaded),
		errors.Is(err, anchor.ErrUnknownElement),
		errors.Is(err, notes.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrQueueFull),
		errors.Is(err, errNoPrefetch):
		return http.StatusServiceUnavailable
	case errors.Is(err, highlight.ErrRemoved):
		return http.StatusConflict
	case errors.Is(err, fetch.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, parser.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, parser.ErrInvalidDocument):
		return http.StatusUnprocessableEntity
	case errors.As(err, &se):
		if se.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case fetch.IsRetryable(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// writeError logs server-side failures and writes the JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= 500 {
		logger.FromContext(r.Context()).Error("request failed", "error", err, "status", code)
	}
	jsonError(w, err.Error(), code)
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid json body: %v", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
