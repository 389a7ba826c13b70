package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mtlprog/taskboard/internal/domain"
)

type contextKey string

const (
	// ContextKeyUser is the key for storing the authenticated user in the
	// request context.
	ContextKeyUser contextKey = "user"
)

// TokenLookup resolves an API token to a user. Implemented by the user
// repository and by the in-memory gateway in demo mode.
type TokenLookup interface {
	GetByToken(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware handles Bearer token authentication: it realizes the
// identity provider for the HTTP surface.
type AuthMiddleware struct {
	users TokenLookup
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(users TokenLookup) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// Authenticate validates the Bearer token and adds the user to the request
// context. Requests without a valid identity never reach a handler.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token := parts[1]
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		user, err := m.users.GetByToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext retrieves the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, error) {
	user, ok := ctx.Value(ContextKeyUser).(*domain.User)
	if !ok || user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
