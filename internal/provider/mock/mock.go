// Package mock provides a testify mock of the provider client for service
// and handler tests.
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/beatx/beatx-server/internal/provider"
)

// Client is a mock implementation of provider.Client.
type Client struct {
	mock.Mock
}

var _ provider.Client = (*Client)(nil)

func (m *Client) SignUp(ctx context.Context, params provider.SignUpParams) (*provider.User, *provider.Session, error) {
	args := m.Called(ctx, params)
	var user *provider.User
	if u := args.Get(0); u != nil {
		user = u.(*provider.User)
	}
	var session *provider.Session
	if s := args.Get(1); s != nil {
		session = s.(*provider.Session)
	}
	return user, session, args.Error(2)
}

func (m *Client) SignInWithPassword(ctx context.Context, email, password string) (*provider.Session, error) {
	args := m.Called(ctx, email, password)
	if s := args.Get(0); s != nil {
		return s.(*provider.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) RefreshSession(ctx context.Context, refreshToken string) (*provider.Session, error) {
	args := m.Called(ctx, refreshToken)
	if s := args.Get(0); s != nil {
		return s.(*provider.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) FindUserByEmail(ctx context.Context, email string) (*provider.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*provider.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GenerateLink(ctx context.Context, linkType provider.LinkType, email, redirectTo string) error {
	args := m.Called(ctx, linkType, email, redirectTo)
	return args.Error(0)
}

func (m *Client) GetUser(ctx context.Context, accessToken string) (*provider.User, error) {
	args := m.Called(ctx, accessToken)
	if u := args.Get(0); u != nil {
		return u.(*provider.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateUser(ctx context.Context, userID string, params provider.UpdateUserParams) (*provider.User, error) {
	args := m.Called(ctx, userID, params)
	if u := args.Get(0); u != nil {
		return u.(*provider.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) VerifyToken(ctx context.Context, tokenHash string, linkType provider.LinkType) (*provider.Session, error) {
	args := m.Called(ctx, tokenHash, linkType)
	if s := args.Get(0); s != nil {
		return s.(*provider.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateSignedURL(ctx context.Context, bucket, path string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, bucket, path, expiresIn)
	return args.String(0), args.Error(1)
}
