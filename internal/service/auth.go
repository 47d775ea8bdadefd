package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/beatx/beatx-server/internal/auth"
	"github.com/beatx/beatx-server/internal/domain"
	"github.com/beatx/beatx-server/internal/event"
	"github.com/beatx/beatx-server/internal/provider"
	"github.com/beatx/beatx-server/internal/repository"
	apperrors "github.com/beatx/beatx-server/pkg/errors"
)

// AuthConfig carries the auth service tunables.
type AuthConfig struct {
	// ResendCooldown is the minimum gap between verification emails to the
	// same address.
	ResendCooldown time.Duration

	// EmailRedirectURL is where confirmation links land after the provider
	// verifies the address.
	EmailRedirectURL string
}

// AuthService owns signup, login, token refresh, logout, and the profile
// operations. Identity lives at the provider; this service adds the resend
// cooldown, the revocation ledger, and local token minting when configured.
type AuthService struct {
	provider    provider.Client
	tokens      *auth.TokenManager
	resendLog   repository.ResendLogRepository
	revocations repository.RevocationRepository
	events      event.Publisher
	cfg         AuthConfig
	logger      *slog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// NewAuthService wires the auth service.
func NewAuthService(
	providerClient provider.Client,
	tokens *auth.TokenManager,
	resendLog repository.ResendLogRepository,
	revocations repository.RevocationRepository,
	events event.Publisher,
	cfg AuthConfig,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		provider:    providerClient,
		tokens:      tokens,
		resendLog:   resendLog,
		revocations: revocations,
		events:      events,
		cfg:         cfg,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SignUpResult distinguishes a fresh registration from a verification resend.
type SignUpResult struct {
	Message string          `json:"message"`
	User    *domain.Profile `json:"user,omitempty"`
	Session *domain.Session `json:"session,omitempty"`
	Resent  bool            `json:"-"`
}

// SignUp registers a new account or, for an existing unconfirmed address,
// re-sends the verification email under the cooldown guard.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	existing, err := s.provider.FindUserByEmail(ctx, email)
	switch {
	case err == nil && existing.Confirmed():
		return nil, apperrors.InvalidInput("email is already registered")
	case err == nil:
		// Unconfirmed account: resend the verification email instead of
		// creating a duplicate, gated by the cooldown.
		if err := s.resendVerification(ctx, email); err != nil {
			return nil, err
		}
		return &SignUpResult{
			Message: "verification email resent, please check your inbox",
			Resent:  true,
		}, nil
	case !errors.Is(err, provider.ErrNotFound):
		return nil, err
	}

	user, session, err := s.provider.SignUp(ctx, provider.SignUpParams{
		Email:      email,
		Password:   password,
		RedirectTo: s.cfg.EmailRedirectURL,
	})
	if err != nil {
		if errors.Is(err, provider.ErrUserExists) {
			return nil, apperrors.InvalidInput("email is already registered")
		}
		return nil, err
	}

	if user != nil {
		if pubErr := s.events.PublishUserRegistered(ctx, user.ID, email); pubErr != nil {
			s.logger.WarnContext(ctx, "failed to publish user.registered",
				slog.String("error", pubErr.Error()),
			)
		}
	}

	result := &SignUpResult{
		Message: "signup successful, please verify your email",
		User:    profileFromUser(user),
	}
	if session != nil {
		result.Session, err = s.buildSession(session)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// resendVerification claims a resend slot and asks the provider to generate
// a fresh signup link. A claim that fails because the window is still open
// surfaces as a rate-limit error carrying the remaining wait.
func (s *AuthService) resendVerification(ctx context.Context, email string) error {
	now := s.now()
	remaining, ok, err := s.resendLog.TryReserve(ctx, email, now, s.cfg.ResendCooldown)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("reserve resend slot: %w", err))
	}
	if !ok {
		wait := int(math.Ceil(remaining.Seconds()))
		if wait < 1 {
			wait = 1
		}
		return apperrors.RateLimited(
			fmt.Sprintf("verification email already sent, retry in %d seconds", wait),
			wait,
		)
	}

	if err := s.provider.GenerateLink(ctx, provider.LinkSignup, email, s.cfg.EmailRedirectURL); err != nil {
		return err
	}

	if pubErr := s.events.PublishVerificationResent(ctx, email); pubErr != nil {
		s.logger.WarnContext(ctx, "failed to publish user.verification_resent",
			slog.String("error", pubErr.Error()),
		)
	}
	return nil
}

// Login exchanges credentials for a session. Unconfirmed accounts are
// rejected outright.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, *domain.Profile, error) {
	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrEmailNotConfirmed):
			return nil, nil, apperrors.Forbidden("email is not verified")
		case errors.Is(err, provider.ErrInvalidCredentials):
			return nil, nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, nil, err
	}

	// Belt and braces: some provider configurations sign unconfirmed users
	// in anyway.
	if session.User != nil && !session.User.Confirmed() {
		return nil, nil, apperrors.Forbidden("email is not verified")
	}

	out, err := s.buildSession(session)
	if err != nil {
		return nil, nil, err
	}
	return out, profileFromUser(session.User), nil
}

// Refresh exchanges a refresh token for a fresh session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh_token is required")
	}

	session, err := s.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidRefresh) || errors.Is(err, provider.ErrInvalidCredentials) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, err
	}

	return s.buildSession(session)
}

// buildSession converts a provider session, re-minting the access token
// locally in self-issued mode.
func (s *AuthService) buildSession(session *provider.Session) (*domain.Session, error) {
	out := &domain.Session{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    session.ExpiresIn,
	}

	if s.tokens.Mode() == auth.ModeSelfIssued && session.User != nil {
		token, expiresAt, err := s.tokens.Issue(session.User.ID, session.User.Email, "authenticated")
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("mint access token: %w", err))
		}
		out.AccessToken = token
		out.ExpiresIn = int64(time.Until(expiresAt).Seconds())
	}

	return out, nil
}

// Logout puts the presented token on the revocation ledger. The token is not
// verified first: a logout with a damaged token still denies that exact
// string from here on, and the expiry for the ledger entry comes from an
// unverified decode, used for bookkeeping only.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.InvalidInput("token is required")
	}

	expiresAt := s.tokens.DecodeExpiryUnverified(token)
	if err := s.revocations.Insert(ctx, token, expiresAt); err != nil {
		return apperrors.Internal(fmt.Errorf("record revocation: %w", err))
	}

	// The logout event wants a user ID, which only a verified token can
	// supply. Skipping it for unverifiable tokens is fine.
	if claims, err := s.tokens.Verify(token); err == nil {
		if pubErr := s.events.PublishUserLoggedOut(ctx, claims.UserID()); pubErr != nil {
			s.logger.WarnContext(ctx, "failed to publish user.logged_out",
				slog.String("error", pubErr.Error()),
			)
		}
	}
	return nil
}

// IsRevoked reports whether the exact token string is on the ledger. Errors
// fail closed at the call site.
func (s *AuthService) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.revocations.IsRevoked(ctx, token)
}

// VerifyToken verifies an access token's signature and claims.
func (s *AuthService) VerifyToken(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

// Profile returns the account behind the given principal.
func (s *AuthService) Profile(ctx context.Context, claims *auth.Claims, bearer string) (*domain.Profile, error) {
	var user *provider.User
	var err error

	// Self-issued tokens mean nothing to the provider, so the lookup goes
	// through the admin API by email instead.
	if s.tokens.Mode() == auth.ModeSelfIssued {
		user, err = s.provider.FindUserByEmail(ctx, claims.Email)
	} else {
		user, err = s.provider.GetUser(ctx, bearer)
	}
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) || errors.Is(err, provider.ErrInvalidCredentials) {
			return nil, apperrors.Unauthorized("account not found")
		}
		return nil, err
	}

	return profileFromUser(user), nil
}

// UpdateProfileParams carries the mutable account fields.
type UpdateProfileParams struct {
	DisplayName string
	AvatarURL   string
	Password    string
}

// UpdateProfile applies account changes through the provider's admin API.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*domain.Profile, error) {
	update := provider.UpdateUserParams{Password: params.Password}
	if params.DisplayName != "" || params.AvatarURL != "" {
		update.Metadata = map[string]string{}
		if params.DisplayName != "" {
			update.Metadata["display_name"] = params.DisplayName
		}
		if params.AvatarURL != "" {
			update.Metadata["avatar_url"] = params.AvatarURL
		}
	}

	user, err := s.provider.UpdateUser(ctx, userID, update)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return nil, apperrors.NotFound("account")
		}
		return nil, err
	}
	return profileFromUser(user), nil
}

// VerifyEmail confirms an email verification token hash with the provider.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenHash string) error {
	if tokenHash == "" {
		return apperrors.InvalidInput("verification token is required")
	}
	if _, err := s.provider.VerifyToken(ctx, tokenHash, provider.LinkSignup); err != nil {
		if errors.Is(err, provider.ErrInvalidCredentials) || errors.Is(err, provider.ErrNotFound) {
			return apperrors.Unauthorized("verification link is invalid or expired")
		}
		return err
	}
	return nil
}

// PurgeExpiredRevocations prunes ledger entries whose tokens have expired.
func (s *AuthService) PurgeExpiredRevocations(ctx context.Context) (int64, error) {
	return s.revocations.PurgeExpired(ctx, s.now())
}

func profileFromUser(user *provider.User) *domain.Profile {
	if user == nil {
		return nil
	}
	p := &domain.Profile{
		ID:          user.ID,
		Email:       user.Email,
		ConfirmedAt: user.ConfirmedAt,
		CreatedAt:   user.CreatedAt,
	}
	if user.UserMetadata != nil {
		p.DisplayName = user.UserMetadata["display_name"]
		p.AvatarURL = user.UserMetadata["avatar_url"]
		p.Metadata = user.UserMetadata
	}
	return p
}
