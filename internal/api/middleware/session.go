package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/example/storefront/internal/identity"
)

// SessionSource is the slice of the auth bridge the middleware reads.
type SessionSource interface {
	CurrentUser() (*identity.User, bool)
}

type contextKey string

const userContextKey contextKey = "user"

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RequireUser guards authenticated surfaces. The signed-in user comes from
// the session bridge, which is the process-wide source of truth.
func RequireUser(sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := sessions.CurrentUser()
			if !ok {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole checks the signed-in user's role. It must run inside
// RequireUser.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, "forbidden", http.StatusForbidden)
		})
	}
}

// GetUser retrieves the signed-in user from the request context.
func GetUser(ctx context.Context) (*identity.User, bool) {
	user, ok := ctx.Value(userContextKey).(*identity.User)
	return user, ok
}

// GetUserID is a helper for just the id.
func GetUserID(ctx context.Context) string {
	user, ok := GetUser(ctx)
	if !ok {
		return ""
	}
	return user.ID
}
