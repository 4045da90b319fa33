package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

type ctxKey struct{}

// WithClaims stores verified claims on the context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFrom returns the claims placed by Middleware.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// UserID returns the authenticated user id or 0.
func UserID(ctx context.Context) int64 {
	if c, ok := ClaimsFrom(ctx); ok {
		return c.UserID
	}
	return 0
}

// Middleware rejects requests without a valid bearer token.
func Middleware(tokens *Tokens, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				utilities.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "No token provided"})
				return
			}
			claims, err := tokens.Verify(strings.TrimSpace(header[len("bearer "):]))
			if err != nil {
				logger.Debugw("token rejected", "path", r.URL.Path, "err", err)
				msg := "Invalid token"
				if errors.Is(err, ErrTokenExpired) {
					msg = "Token expired"
				}
				utilities.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin admits only requests whose claims carry the admin flag. It
// runs after Middleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFrom(r.Context())
			if !ok {
				utilities.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
				return
			}
			if !c.IsAdmin {
				utilities.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "Admin access required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
