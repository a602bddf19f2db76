package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hotelstock/hotel-stock-api/internal/httputil"
	"github.com/hotelstock/hotel-stock-api/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// CurrentUserContextKey holds the authenticated *user.User.
	CurrentUserContextKey ContextKey = "current_user"
	// BearerTokenContextKey holds the plaintext secret presented on the
	// request, so logout can revoke exactly that token.
	BearerTokenContextKey ContextKey = "bearer_token"
)

// Verifier resolves a presented bearer secret to its owning user.
type Verifier interface {
	Verify(ctx context.Context, secret string) (*user.User, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	verifier Verifier
}

func NewMiddleware(verifier Verifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// RequireAuth validates the bearer token and stores the resolved user
// in the request context. Anonymous requests are rejected with 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}
		secret := parts[1]

		current, err := m.verifier.Verify(r.Context(), secret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), CurrentUserContextKey, current)
		ctx = context.WithValue(ctx, BearerTokenContextKey, secret)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(ctx context.Context) (*user.User, bool) {
	current, ok := ctx.Value(CurrentUserContextKey).(*user.User)
	return current, ok
}

// GetBearerTokenFromContext extracts the presented bearer secret from the context
func GetBearerTokenFromContext(ctx context.Context) (string, bool) {
	secret, ok := ctx.Value(BearerTokenContextKey).(string)
	return secret, ok
}
