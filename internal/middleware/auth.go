package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"relief-backend/internal/models"
	"relief-backend/internal/services"
)

type contextKey string

const (
	userKey     contextKey = "user"
	identityKey contextKey = "identity"
)

// Authenticator resolves bearer tokens to users
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Identify(ctx context.Context, token string) services.Identity
}

// RequireUser rejects requests without a valid bearer token. An unknown
// subject is reported as 404, every other token problem as 401.
func RequireUser(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				respondError(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, services.ErrNotFound) {
					status = http.StatusNotFound
				}
				respondError(w, err.Error(), status)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, identityKey, services.Authenticated(user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalUser attaches an identity to every request and never rejects
func OptionalUser(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := services.Anonymous
			if token, ok := BearerToken(r); ok {
				identity = auth.Identify(r.Context(), token)
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			if user, ok := identity.User(); ok {
				ctx = context.WithValue(ctx, userKey, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user stored by RequireUser
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// IdentityFrom returns the caller identity, Anonymous when none was stored
func IdentityFrom(ctx context.Context) services.Identity {
	identity, ok := ctx.Value(identityKey).(services.Identity)
	if !ok {
		return services.Anonymous
	}
	return identity
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}

	return strings.TrimSpace(parts[1]), true
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"detail": message})
}
