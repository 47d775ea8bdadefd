package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/beatx/beatx-server/internal/domain"
	apperrors "github.com/beatx/beatx-server/pkg/errors"
)

type trackFixture struct {
	svc    *TrackService
	tracks *mockTracks
	likes  *mockLikes
	signer *mockSigner
	events *mockPublisher
}

func newTrackFixture(t *testing.T) *trackFixture {
	t.Helper()
	f := &trackFixture{
		tracks: &mockTracks{},
		likes:  &mockLikes{},
		signer: &mockSigner{},
		events: &mockPublisher{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewTrackService(f.tracks, f.likes, f.signer, f.events, logger)
	return f
}

func sampleTrack() *domain.Track {
	return &domain.Track{
		ID:      "t1",
		Title:   "Song A",
		Artist:  "Artist A",
		FileKey: "tracks/a.mp3",
	}
}

func TestTrackList(t *testing.T) {
	f := newTrackFixture(t)

	f.tracks.On("List", mock.Anything, "user-1").Return([]domain.Track{*sampleTrack()}, nil)

	tracks, err := f.svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
}

func TestToggleLike_Likes(t *testing.T) {
	f := newTrackFixture(t)

	f.tracks.On("GetByID", mock.Anything, "t1").Return(sampleTrack(), nil)
	f.likes.On("Toggle", mock.Anything, "user-1", "t1").Return(true, nil)
	f.events.On("PublishTrackLiked", mock.Anything, "user-1", "t1", true).Return(nil)

	liked, err := f.svc.ToggleLike(context.Background(), "user-1", "t1")
	require.NoError(t, err)
	assert.True(t, liked)

	f.events.AssertExpectations(t)
}

func TestToggleLike_MissingTrack(t *testing.T) {
	f := newTrackFixture(t)

	f.tracks.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("track"))

	_, err := f.svc.ToggleLike(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	f.likes.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleLike_EmptyTrackID(t *testing.T) {
	f := newTrackFixture(t)

	_, err := f.svc.ToggleLike(context.Background(), "user-1", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestToggleLike_PublishFailureIsNotFatal(t *testing.T) {
	f := newTrackFixture(t)

	f.tracks.On("GetByID", mock.Anything, "t1").Return(sampleTrack(), nil)
	f.likes.On("Toggle", mock.Anything, "user-1", "t1").Return(false, nil)
	f.events.On("PublishTrackLiked", mock.Anything, "user-1", "t1", false).
		Return(assert.AnError)

	liked, err := f.svc.ToggleLike(context.Background(), "user-1", "t1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestStream_SignsFileKey(t *testing.T) {
	f := newTrackFixture(t)

	grant := &domain.StreamGrant{URL: "https://signed.example/a.mp3", ExpiresAt: time.Now().Add(2 * time.Minute)}
	f.tracks.On("GetByID", mock.Anything, "t1").Return(sampleTrack(), nil)
	f.signer.On("SignTrack", mock.Anything, "tracks/a.mp3").Return(grant, nil)

	got, err := f.svc.Stream(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, grant.URL, got.URL)
}

func TestStream_MissingTrack(t *testing.T) {
	f := newTrackFixture(t)

	f.tracks.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("track"))

	_, err := f.svc.Stream(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	f.signer.AssertNotCalled(t, "SignTrack", mock.Anything, mock.Anything)
}
