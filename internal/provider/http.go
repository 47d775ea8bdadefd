package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/beatx/beatx-server/pkg/errors"
	"github.com/beatx/beatx-server/pkg/httpclient"
)

// HTTPClient talks to the provider's REST surface (auth and storage) through
// the circuit-breaking HTTP client.
type HTTPClient struct {
	baseURL    string
	serviceKey string
	anonKey    string
	http       *httpclient.BreakerClient
	logger     *slog.Logger
}

// Config holds provider connection settings.
type Config struct {
	BaseURL    string
	ServiceKey string
	AnonKey    string
	Timeout    time.Duration
}

// NewHTTPClient builds the REST provider client.
func NewHTTPClient(cfg Config, logger *slog.Logger) *HTTPClient {
	clientCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}
	base := httpclient.New(clientCfg)
	breaker := httpclient.NewBreakerClient("provider", base, httpclient.DefaultBreakerConfig(), logger)

	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		anonKey:    cfg.AnonKey,
		http:       breaker,
		logger:     logger,
	}
}

// errorBody is the provider's error response shape.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Msg         string `json:"msg"`
	Message     string `json:"message"`
	Code        any    `json:"code"`
}

func (e *errorBody) text() string {
	for _, s := range []string{e.Description, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// signUpRequest is the provider's signup payload.
type signUpRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data,omitempty"`
}

// signUpResponse covers both shapes the provider returns: a bare user when
// confirmation is pending, or a full session when auto-confirm is on.
type signUpResponse struct {
	User
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	SessionUser  *User  `json:"user"`
}

func (c *HTTPClient) SignUp(ctx context.Context, params SignUpParams) (*User, *Session, error) {
	endpoint := c.baseURL + "/auth/v1/signup"
	if params.RedirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(params.RedirectTo)
	}

	var resp signUpResponse
	err := c.do(ctx, http.MethodPost, endpoint, c.anonOrServiceKey(), signUpRequest{
		Email:    params.Email,
		Password: params.Password,
		Data:     params.Metadata,
	}, &resp)
	if err != nil {
		return nil, nil, err
	}

	if resp.AccessToken != "" {
		user := resp.SessionUser
		return user, &Session{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			TokenType:    resp.TokenType,
			ExpiresIn:    resp.ExpiresIn,
			User:         user,
		}, nil
	}

	user := resp.User
	return &user, nil, nil
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	endpoint := c.baseURL + "/auth/v1/token?grant_type=password"

	var session Session
	err := c.do(ctx, http.MethodPost, endpoint, c.anonOrServiceKey(), map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	endpoint := c.baseURL + "/auth/v1/token?grant_type=refresh_token"

	var session Session
	err := c.do(ctx, http.MethodPost, endpoint, c.anonOrServiceKey(), map[string]string{
		"refresh_token": refreshToken,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	endpoint := c.baseURL + "/auth/v1/admin/users?email=" + url.QueryEscape(email)

	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, c.serviceKey, nil, &resp); err != nil {
		return nil, err
	}

	for i := range resp.Users {
		if strings.EqualFold(resp.Users[i].Email, email) {
			return &resp.Users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (c *HTTPClient) GenerateLink(ctx context.Context, linkType LinkType, email, redirectTo string) error {
	endpoint := c.baseURL + "/auth/v1/admin/generate_link"

	body := map[string]string{
		"type":  string(linkType),
		"email": email,
	}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}

	var resp json.RawMessage
	return c.do(ctx, http.MethodPost, endpoint, c.serviceKey, body, &resp)
}

func (c *HTTPClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	endpoint := c.baseURL + "/auth/v1/user"

	var user User
	if err := c.do(ctx, http.MethodGet, endpoint, accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, userID string, params UpdateUserParams) (*User, error) {
	endpoint := c.baseURL + "/auth/v1/admin/users/" + url.PathEscape(userID)

	body := map[string]any{}
	if params.Email != "" {
		body["email"] = params.Email
	}
	if params.Password != "" {
		body["password"] = params.Password
	}
	if params.Metadata != nil {
		body["user_metadata"] = params.Metadata
	}

	var user User
	if err := c.do(ctx, http.MethodPut, endpoint, c.serviceKey, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) VerifyToken(ctx context.Context, tokenHash string, linkType LinkType) (*Session, error) {
	endpoint := c.baseURL + "/auth/v1/verify"

	var session Session
	err := c.do(ctx, http.MethodPost, endpoint, c.anonOrServiceKey(), map[string]string{
		"type":       string(linkType),
		"token_hash": tokenHash,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) CreateSignedURL(ctx context.Context, bucket, path string, expiresIn time.Duration) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", c.baseURL, url.PathEscape(bucket), escapePath(path))

	var resp struct {
		SignedURL string `json:"signedURL"`
	}
	err := c.do(ctx, http.MethodPost, endpoint, c.serviceKey, map[string]int{
		"expiresIn": int(expiresIn.Seconds()),
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.SignedURL == "" {
		return "", fmt.Errorf("provider returned empty signed URL")
	}

	// Storage returns a relative path like /object/sign/bucket/key?token=...
	if strings.HasPrefix(resp.SignedURL, "/") {
		return c.baseURL + "/storage/v1" + resp.SignedURL, nil
	}
	return resp.SignedURL, nil
}

// do executes one provider request with auth headers, decodes a success body
// into out, and maps failure bodies onto sentinel or app errors.
func (c *HTTPClient) do(ctx context.Context, method, endpoint, bearer string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal provider request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create provider request: %w", err)
	}
	req.Header.Set("apikey", c.anonOrServiceKey())
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return apperrors.Upstream("identity provider unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Upstream("read provider response", err)
	}

	if resp.StatusCode >= 400 {
		return c.mapError(ctx, resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperrors.Upstream("decode provider response", err)
		}
	}
	return nil
}

// mapError converts a provider failure body into a sentinel or app error.
func (c *HTTPClient) mapError(ctx context.Context, status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := strings.ToLower(body.text())

	switch {
	case strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid_credentials"):
		return ErrInvalidCredentials
	case strings.Contains(msg, "email not confirmed"),
		strings.Contains(msg, "email_not_confirmed"):
		return ErrEmailNotConfirmed
	case strings.Contains(msg, "already registered"),
		strings.Contains(msg, "user_already_exists"):
		return ErrUserExists
	case strings.Contains(msg, "refresh token"),
		strings.Contains(msg, "refresh_token"):
		return ErrInvalidRefresh
	}

	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrInvalidCredentials
	case http.StatusUnprocessableEntity:
		return ErrUserExists
	}

	c.logger.ErrorContext(ctx, "unexpected provider error",
		slog.Int("status", status),
		slog.String("body", string(raw)),
	)
	return apperrors.Upstream("identity provider error", fmt.Errorf("provider status %d", status))
}

// anonOrServiceKey prefers the anon key for public-surface calls, falling
// back to the service key in single-key deployments.
func (c *HTTPClient) anonOrServiceKey() string {
	if c.anonKey != "" {
		return c.anonKey
	}
	return c.serviceKey
}

// escapePath escapes each segment of an object path while preserving slashes.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
