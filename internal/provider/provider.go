// Package provider defines the client for the hosted backend platform that
// owns identity and object storage. The server never talks to the provider
// except through the Client interface, so services can be tested against the
// mock implementation.
package provider

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors mapped from provider responses. Service code branches on
// these instead of inspecting HTTP status codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrUserExists         = errors.New("user already registered")
	ErrNotFound           = errors.New("not found")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// User is the provider's view of an account.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	UserMetadata map[string]string `json:"user_metadata,omitempty"`
	ConfirmedAt  *time.Time        `json:"email_confirmed_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Confirmed reports whether the user's email address has been verified.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil && !u.ConfirmedAt.IsZero()
}

// Session is a provider-minted token pair.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user,omitempty"`
}

// SignUpParams are the inputs to account creation.
type SignUpParams struct {
	Email    string
	Password string
	Metadata map[string]string
	// RedirectTo is where the confirmation link lands after the provider
	// verifies the email.
	RedirectTo string
}

// UpdateUserParams carries the mutable profile fields. Nil maps leave the
// corresponding provider fields untouched.
type UpdateUserParams struct {
	Email    string
	Password string
	Metadata map[string]string
}

// LinkType enumerates the admin link kinds the server generates.
type LinkType string

const (
	LinkSignup   LinkType = "signup"
	LinkRecovery LinkType = "recovery"
)

// Client is the full provider surface the server depends on.
type Client interface {
	// SignUp creates an account and triggers the confirmation email. The
	// returned session is nil when email confirmation is required.
	SignUp(ctx context.Context, params SignUpParams) (*User, *Session, error)

	// SignInWithPassword exchanges credentials for a session. Returns
	// ErrInvalidCredentials or ErrEmailNotConfirmed on the respective
	// failures.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// RefreshSession exchanges a refresh token for a fresh session.
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)

	// FindUserByEmail looks an account up through the admin API. Returns
	// ErrNotFound when no account matches.
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// GenerateLink re-issues a confirmation or recovery link, which also
	// triggers the corresponding email.
	GenerateLink(ctx context.Context, linkType LinkType, email, redirectTo string) error

	// GetUser resolves the account behind a bearer token.
	GetUser(ctx context.Context, accessToken string) (*User, error)

	// UpdateUser applies profile changes on behalf of the given user.
	UpdateUser(ctx context.Context, userID string, params UpdateUserParams) (*User, error)

	// VerifyToken confirms an email verification token of the given type.
	VerifyToken(ctx context.Context, tokenHash string, linkType LinkType) (*Session, error)

	// CreateSignedURL asks object storage for a short-lived signed URL for
	// the object at bucket/path.
	CreateSignedURL(ctx context.Context, bucket, path string, expiresIn time.Duration) (string, error)
}
