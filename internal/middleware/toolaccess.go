package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ledgertools/api/internal/access"
)

// RequireToolAccess gates a route group behind a per-user tool grant. The
// caller's identity arrives as an X-User-ID header (UUID) set by the upstream
// authenticating proxy; this middleware does not authenticate, it only
// authorizes.
func RequireToolAccess(checker access.Checker, tool string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-User-ID")
			if raw == "" {
				jsonError(w, http.StatusUnauthorized, "missing X-User-ID header")
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid X-User-ID header")
				return
			}

			allowed, err := checker.HasToolAccess(r.Context(), userID, tool)
			if err != nil {
				logger.Error("tool access check failed", "user_id", userID, "tool", tool, "error", err)
				jsonError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !allowed {
				logger.Info("tool access denied", "user_id", userID, "tool", tool)
				jsonError(w, http.StatusForbidden, "access to this tool has not been granted")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
