package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/beatx/beatx-server/internal/auth"
	"github.com/beatx/beatx-server/pkg/httputil"
	"github.com/beatx/beatx-server/pkg/logger"
)

type contextKey int

const (
	claimsKey contextKey = iota
	tokenKey
)

// Authenticator is the slice of the auth service the authorization gate
// depends on.
type Authenticator interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	VerifyToken(token string) (*auth.Claims, error)
}

// Authorize is the authorization gate for protected routes. Exit points, in
// order: no header, malformed header, revoked token, failed verification.
// The revocation ledger is consulted BEFORE the signature is checked so that
// a revoked token is rejected even if key rotation would make its signature
// unverifiable, and so revocation wins any race with verification. A ledger
// read failure denies the request; the gate never fails open.
func Authorize(authn Authenticator, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			revoked, err := authn.IsRevoked(r.Context(), token)
			if err != nil {
				l.ErrorContext(r.Context(), "revocation check failed",
					slog.String("error", err.Error()),
				)
				httputil.Fail(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if revoked {
				httputil.Fail(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			claims, err := authn.VerifyToken(token)
			if err != nil {
				httputil.Fail(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, tokenKey, token)
			ctx = logger.WithUserID(ctx, claims.UserID())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// ClaimsFromContext returns the verified claims the gate stored.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// TokenFromContext returns the raw bearer token the gate admitted.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
