package admin

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	httperrors "github.com/skillstream/study-platform/pkg/http/errors"
)

// Middleware rejects requests without a valid admin bearer token.
func Middleware(mgr *Manager, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Admin token required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid authorization header")
				return
			}

			if _, err := mgr.Validate(parts[1]); err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("admin token validation failed")
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid or expired admin token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
