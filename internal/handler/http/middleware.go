package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/domain"
	apperrors "github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/errors"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the session user attached by the auth middleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// extractToken pulls the access token from the accessToken cookie, falling
// back to an Authorization: Bearer header.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(token)
	}

	return ""
}

// resolveSession validates the token and loads the user it is bound to.
func resolveSession(r *http.Request, service AuthService) (*domain.User, error) {
	token := extractToken(r)
	if token == "" {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	claims, err := service.ValidateAccessToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid token")
	}

	user, err := service.UserByID(r.Context(), claims.Subject)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid token")
	}

	return user, nil
}

// SessionAuth rejects requests without a valid session and attaches the
// resolved user to the request context.
func SessionAuth(service AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveSession(r, service)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = logger.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession attaches the session user when a valid one is presented
// and passes the request through untouched otherwise.
func OptionalSession(service AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := resolveSession(r, service); err == nil {
				ctx := context.WithValue(r.Context(), userContextKey, user)
				ctx = logger.WithUserID(ctx, user.ID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}
