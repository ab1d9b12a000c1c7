// Package handler provides HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/articlehub/articlehub/internal/auth"
	"github.com/articlehub/articlehub/internal/cache"
	"github.com/articlehub/articlehub/internal/handler/dto"
	"github.com/articlehub/articlehub/internal/middleware"
	"github.com/articlehub/articlehub/internal/service"
)

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "resource not found", "NOT_FOUND")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed", "METHOD_NOT_ALLOWED")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

// decodeJSON decodes the request body into dst.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "PAYLOAD_TOO_LARGE")
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, "request body is required", "INVALID_JSON")
	default:
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_JSON")
	}
	return false
}

// validatable is implemented by request DTOs.
type validatable interface {
	Validate() error
}

// decodeAndValidate decodes the body into req and validates it.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req validatable) bool {
	if !decodeJSON(w, r, req) {
		return false
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
}

// handleServiceError maps service errors to HTTP responses by kind.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := service.KindOf(err)

	var status int
	switch kind {
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindUnauthorized:
		status = http.StatusUnauthorized
	case service.KindBadRequest:
		status = http.StatusBadRequest
	default:
		logger.Error("request failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int64("user_id", auth.UserIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", kind.String())
		return
	}

	// Clients see the classified message, never the wrapping context.
	message := http.StatusText(status)
	var se *service.Error
	if errors.As(err, &se) {
		message = se.Error()
	}
	writeError(w, status, message, kind.String())
}

// cacheKey is the request URI with any trailing slash dropped from the path,
// so "/articles/?limit=5" and "/articles?limit=5" share one entry.
func cacheKey(u *url.URL) string {
	path := u.EscapedPath()
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}

// serveCached answers a read through the cache, keyed by cacheKey.
func serveCached[T any](w http.ResponseWriter, r *http.Request, c *cache.Cache, logger *slog.Logger, load func(ctx context.Context) (T, error)) {
	value, err := cache.Remember(r.Context(), c, cacheKey(r.URL), load)
	if err != nil {
		handleServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}
