package auth

import (
	"context"
	"net/http"
	"strings"

	"popreel/internal/models"
	"popreel/internal/response"
)

// TokenVerifier resolves a bearer token to its user.
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type ctxKey struct{}

// SessionMiddleware requires Authorization: Bearer <token> and stores the user in the request context.
func SessionMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w)
				return
			}

			user, err := verifier.Authenticate(r.Context(), token)
			if err != nil || user == nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFrom returns the authenticated user, or nil outside the middleware.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(ctxKey{}).(*models.User)
	return user
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func writeUnauthorized(w http.ResponseWriter) {
	response.ErrorWithDetails("Unauthorized", "Provide a session token in the Authorization header as Bearer TOKEN").
		WriteError(w, http.StatusUnauthorized)
}
