package middleware

import (
	"net/http"
	"strings"

	"movie-booking/pkg/utils"

	"go.uber.org/zap"
)

// Auth validates the bearer token and stores the caller's identity in the
// request context.
func Auth(tokens *utils.TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			identity, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("Rejected bearer token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetUserContext(r.Context(), identity)))
		})
	}
}

// RequireRole only lets callers with the given role through. It must run
// after Auth.
func RequireRole(role string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := utils.GetIdentityFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if identity.Role != role {
				logger.Warn("Role check failed",
					zap.String("user_id", identity.UserID.String()),
					zap.String("role", identity.Role),
					zap.String("required", role),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Not authorized for this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
