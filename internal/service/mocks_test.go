package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/beatx/beatx-server/internal/domain"
)

// --- Repository doubles ---

type mockResendLog struct {
	mock.Mock
}

func (m *mockResendLog) TryReserve(ctx context.Context, email string, now time.Time, window time.Duration) (time.Duration, bool, error) {
	args := m.Called(ctx, email, now, window)
	return args.Get(0).(time.Duration), args.Bool(1), args.Error(2)
}

type mockRevocations struct {
	mock.Mock
}

func (m *mockRevocations) Insert(ctx context.Context, token string, expiresAt time.Time) error {
	args := m.Called(ctx, token, expiresAt)
	return args.Error(0)
}

func (m *mockRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockRevocations) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockTracks struct {
	mock.Mock
}

func (m *mockTracks) List(ctx context.Context, userID string) ([]domain.Track, error) {
	args := m.Called(ctx, userID)
	if t := args.Get(0); t != nil {
		return t.([]domain.Track), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTracks) GetByID(ctx context.Context, id string) (*domain.Track, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*domain.Track), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLikes struct {
	mock.Mock
}

func (m *mockLikes) Toggle(ctx context.Context, userID, trackID string) (bool, error) {
	args := m.Called(ctx, userID, trackID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikes) ListByUser(ctx context.Context, userID string) ([]domain.Track, error) {
	args := m.Called(ctx, userID)
	if t := args.Get(0); t != nil {
		return t.([]domain.Track), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPlaylists struct {
	mock.Mock
}

func (m *mockPlaylists) Create(ctx context.Context, playlist *domain.Playlist) error {
	args := m.Called(ctx, playlist)
	return args.Error(0)
}

func (m *mockPlaylists) ListByOwner(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	args := m.Called(ctx, ownerID)
	if p := args.Get(0); p != nil {
		return p.([]domain.Playlist), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlaylists) GetByID(ctx context.Context, id string) (*domain.Playlist, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Playlist), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlaylists) ListTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	args := m.Called(ctx, playlistID)
	if t := args.Get(0); t != nil {
		return t.([]domain.Track), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlaylists) ToggleTrack(ctx context.Context, playlistID, trackID string) (bool, error) {
	args := m.Called(ctx, playlistID, trackID)
	return args.Bool(0), args.Error(1)
}

// --- Supporting doubles ---

type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) SignTrack(ctx context.Context, fileKey string) (*domain.StreamGrant, error) {
	args := m.Called(ctx, fileKey)
	if g := args.Get(0); g != nil {
		return g.(*domain.StreamGrant), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, userID, email string) error {
	args := m.Called(ctx, userID, email)
	return args.Error(0)
}

func (m *mockPublisher) PublishVerificationResent(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockPublisher) PublishUserLoggedOut(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockPublisher) PublishTrackLiked(ctx context.Context, userID, trackID string, liked bool) error {
	args := m.Called(ctx, userID, trackID, liked)
	return args.Error(0)
}
