package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/beatx/beatx-server/internal/auth"
	"github.com/beatx/beatx-server/internal/domain"
	"github.com/beatx/beatx-server/internal/event"
	"github.com/beatx/beatx-server/internal/provider"
	providermock "github.com/beatx/beatx-server/internal/provider/mock"
	"github.com/beatx/beatx-server/internal/service"
	"github.com/beatx/beatx-server/pkg/health"
)

const testSecret = "test-secret-that-is-long-enough!"

// --- In-memory ledgers ---

type memResendLog struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func newMemResendLog() *memResendLog {
	return &memResendLog{last: map[string]time.Time{}}
}

func (m *memResendLog) TryReserve(_ context.Context, email string, now time.Time, window time.Duration) (time.Duration, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, found := m.last[email]; found {
		if remaining := window - now.Sub(last); remaining > 0 {
			return remaining, false, nil
		}
	}
	m.last[email] = now
	return 0, true, nil
}

type memRevocations struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newMemRevocations() *memRevocations {
	return &memRevocations{tokens: map[string]time.Time{}}
}

func (m *memRevocations) Insert(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = expiresAt
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, found := m.tokens[token]
	return found, nil
}

func (m *memRevocations) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for token, expiresAt := range m.tokens {
		if !expiresAt.After(now) {
			delete(m.tokens, token)
			purged++
		}
	}
	return purged, nil
}

type staticSigner struct{}

func (staticSigner) SignTrack(_ context.Context, fileKey string) (*domain.StreamGrant, error) {
	return &domain.StreamGrant{
		URL:       "https://storage.example/signed/" + fileKey,
		ExpiresAt: time.Now().Add(2 * time.Minute),
		ExpiresIn: 120,
	}, nil
}

// --- Fixture ---

type serverFixture struct {
	router    http.Handler
	provider  *providermock.Client
	tokens    *auth.TokenManager
	tracks    *stubTracks
	playlists *stubPlaylists
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	f := &serverFixture{
		provider:  &providermock.Client{},
		tracks:    newStubTracks(),
		playlists: newStubPlaylists(),
	}
	logger := testLogger()

	f.tokens = auth.NewTokenManager(auth.ModeSelfIssued, testSecret, time.Hour)

	authService := service.NewAuthService(
		f.provider, f.tokens, newMemResendLog(), newMemRevocations(), event.Noop{},
		service.AuthConfig{ResendCooldown: 300 * time.Second},
		logger,
	)

	trackService := service.NewTrackService(f.tracks, newStubLikes(f.tracks), staticSigner{}, event.Noop{}, logger)
	playlistService := service.NewPlaylistService(f.playlists, f.tracks, logger)

	f.router = NewRouter(authService, trackService, playlistService, health.NewHandler(), RouterConfig{
		ServiceName:    "beatx",
		Environment:    "development",
		AllowedOrigins: []string{"*"},
	}, logger)

	return f
}

func (f *serverFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) issueToken(t *testing.T) string {
	t.Helper()
	return f.issueTokenFor(t, "user-1", "user@example.com")
}

func (f *serverFixture) issueTokenFor(t *testing.T, userID, email string) string {
	t.Helper()
	token, _, err := f.tokens.Issue(userID, email, "authenticated")
	require.NoError(t, err)
	return token
}

func confirmedUser() *provider.User {
	confirmed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &provider.User{
		ID:          "user-1",
		Email:       "user@example.com",
		ConfirmedAt: &confirmed,
		CreatedAt:   confirmed,
	}
}

// --- Auth flow tests ---

func TestSignupEndpoint_NewUser(t *testing.T) {
	f := newServerFixture(t)

	f.provider.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, provider.ErrNotFound)
	f.provider.On("SignUp", mock.Anything, mock.Anything).Return(&provider.User{ID: "user-2", Email: "new@example.com"}, nil, nil)

	rec := f.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":    "new@example.com",
		"password": "hunter22",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(1), body["status"])
}

func TestSignupEndpoint_InvalidBody(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":    "not-an-email",
		"password": "hunter22",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(0), body["status"])
}

func TestSignupEndpoint_ResendCooldown(t *testing.T) {
	f := newServerFixture(t)

	unconfirmed := &provider.User{ID: "user-1", Email: "user@example.com"}
	f.provider.On("FindUserByEmail", mock.Anything, "user@example.com").Return(unconfirmed, nil)
	f.provider.On("GenerateLink", mock.Anything, provider.LinkSignup, "user@example.com", "").Return(nil)

	payload := map[string]string{"email": "user@example.com", "password": "hunter22"}

	first := f.do(t, http.MethodPost, "/auth/signup", "", payload)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, float64(1), decodeEnvelope(t, first)["status"])

	second := f.do(t, http.MethodPost, "/auth/signup", "", payload)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, float64(0), decodeEnvelope(t, second)["status"])
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	// Only the first attempt reached the provider.
	f.provider.AssertNumberOfCalls(t, "GenerateLink", 1)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	f := newServerFixture(t)

	f.provider.On("SignInWithPassword", mock.Anything, "user@example.com", "wrong").
		Return(nil, provider.ErrInvalidCredentials)

	rec := f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, float64(0), decodeEnvelope(t, rec)["status"])
}

func TestLoginEndpoint_UnverifiedEmail(t *testing.T) {
	f := newServerFixture(t)

	f.provider.On("SignInWithPassword", mock.Anything, "user@example.com", "hunter22").
		Return(nil, provider.ErrEmailNotConfirmed)

	rec := f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "hunter22",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProfileEndpoint_RequiresToken(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_ThenTokenIsRejected(t *testing.T) {
	// A token that passed the gate before logout must be denied after,
	// even though its signature still verifies.
	f := newServerFixture(t)
	f.provider.On("FindUserByEmail", mock.Anything, "user@example.com").Return(confirmedUser(), nil)

	token := f.issueToken(t)

	before := f.do(t, http.MethodGet, "/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, before.Code)

	logout := f.do(t, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, logout.Code)

	after := f.do(t, http.MethodGet, "/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}

func TestLogout_DoesNotAffectOtherTokens(t *testing.T) {
	// Tokens for the same principal minted within the same second are
	// byte-identical, so the surviving token belongs to a second user.
	f := newServerFixture(t)
	otherConfirmed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.provider.On("FindUserByEmail", mock.Anything, "other@example.com").Return(&provider.User{
		ID:          "user-2",
		Email:       "other@example.com",
		ConfirmedAt: &otherConfirmed,
		CreatedAt:   otherConfirmed,
	}, nil)

	tokenA := f.issueToken(t)
	tokenB := f.issueTokenFor(t, "user-2", "other@example.com")
	require.NotEqual(t, tokenA, tokenB)

	logout := f.do(t, http.MethodPost, "/auth/logout", tokenA, nil)
	assert.Equal(t, http.StatusOK, logout.Code)

	rec := f.do(t, http.MethodGet, "/auth/profile", tokenB, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout_WithoutHeader(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpoint_MissingToken(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRootEndpoint(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeEnvelope(t, rec)["status"])
}
