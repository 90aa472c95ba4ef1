package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	jwtutil "github.com/Adilet23/Friend_Circle/pkg/jwt"
	"github.com/Adilet23/Friend_Circle/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware validates the Authorization bearer token and stores the
// claims in the request context.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "Missing authorization header", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := jwtutil.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				logger.Log.WithError(err).Warn("Rejected request with invalid token")
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated claims, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(userContextKey).(*jwtutil.Claims)
	return claims
}

// TimeoutMiddleware bounds every backend call made while handling the
// request. Not applied to the websocket route, whose subscriptions are
// long-lived.
func TimeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose claims do not carry the given role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil || claims.Role != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs every request with its duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log.WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("Request handled")
	})
}
