// Package auth implements the token lifecycle: minting (self mode),
// verification, and the unverified expiry decode used by revocation
// bookkeeping.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mode selects where access tokens come from.
type Mode string

const (
	// ModeProviderIssued forwards tokens minted by the identity provider
	// and verifies them with the provider's JWT secret.
	ModeProviderIssued Mode = "provider"

	// ModeSelfIssued mints and verifies tokens locally.
	ModeSelfIssued Mode = "self"
)

// ErrSelfIssueDisabled is returned when Issue is called in provider mode.
// Minting locally while the provider also mints would put two sources of
// truth for the same secret namespace in play.
var ErrSelfIssueDisabled = errors.New("token minting is disabled in provider-issued mode")

// ErrInvalidToken is returned for any token that fails parsing or
// verification. Callers must not leak the underlying reason to clients.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the access-token claims this server understands. Provider-minted
// tokens carry email under the same key, so one claims type serves both modes.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenManager verifies access tokens and, in self-issued mode, mints them.
type TokenManager struct {
	mode   Mode
	secret []byte
	expiry time.Duration
	issuer string
}

// NewTokenManager builds a manager for the given mode. The secret is the
// verification secret for that mode (the provider's JWT secret in provider
// mode, the local signing secret in self mode).
func NewTokenManager(mode Mode, secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		mode:   mode,
		secret: []byte(secret),
		expiry: expiry,
		issuer: "beatx-server",
	}
}

// Mode reports the active issuance mode.
func (m *TokenManager) Mode() Mode {
	return m.mode
}

// Issue mints a signed access token for the given user. It fails in
// provider-issued mode; the provider's tokens are forwarded as-is there.
func (m *TokenManager) Issue(userID, email, role string) (string, time.Time, error) {
	if m.mode != ModeSelfIssued {
		return "", time.Time{}, ErrSelfIssueDisabled
	}

	now := time.Now().UTC()
	expiresAt := now.Add(m.expiry)
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify parses and verifies an access token, returning its claims. All
// failure modes collapse into ErrInvalidToken; the wrapped cause is for logs
// only.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// DecodeExpiryUnverified extracts the expiry claim WITHOUT verifying the
// signature. It exists solely so logout can record a revocation entry with
// the token's natural expiry; it must never gate access. Tokens with no
// parseable expiry get a conservative fallback so the revocation entry still
// outlives any plausible token lifetime.
func (m *TokenManager) DecodeExpiryUnverified(tokenString string) time.Time {
	parser := jwt.NewParser()
	claims := &jwt.RegisteredClaims{}
	_, _, err := parser.ParseUnverified(tokenString, claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Now().UTC().Add(m.expiry)
	}
	return claims.ExpiresAt.Time
}
