package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/articlehub/articlehub/internal/auth"
)

// Guard error messages.
const (
	MessageLoginRequired = "login required"
	MessageAccessDenied  = "access denied"
)

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// SessionChecker reports whether a session row still exists for a token.
type SessionChecker interface {
	SessionActive(ctx context.Context, token string) (bool, error)
}

// SessionConfig holds configuration for the session guard.
type SessionConfig struct {
	Logger     *slog.Logger
	Verifier   TokenVerifier
	CookieName string
	// Sessions is consulted only when CheckRevocation is set.
	Sessions        SessionChecker
	CheckRevocation bool
}

// RequireSession rejects requests without a valid session cookie and
// stores the verified claims in the request context.
func RequireSession(cfg SessionConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w, MessageLoginRequired)
				return
			}

			claims, err := cfg.Verifier.Verify(cookie.Value)
			if err != nil {
				logger.Debug("session token rejected",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("error", err.Error()),
				)
				writeUnauthorized(w, MessageAccessDenied)
				return
			}

			if cfg.CheckRevocation && cfg.Sessions != nil {
				active, err := cfg.Sessions.SessionActive(r.Context(), cookie.Value)
				if err != nil {
					logger.Error("session lookup failed",
						slog.String("request_id", GetRequestID(r.Context())),
						slog.String("error", err.Error()),
					)
					writeErrorJSON(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
					return
				}
				if !active {
					writeUnauthorized(w, MessageAccessDenied)
					return
				}
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeErrorJSON(w, http.StatusUnauthorized, message, "UNAUTHORIZED")
}

// writeErrorJSON writes the same error envelope the handlers use.
func writeErrorJSON(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
