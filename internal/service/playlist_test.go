package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/beatx/beatx-server/internal/domain"
	apperrors "github.com/beatx/beatx-server/pkg/errors"
)

type playlistFixture struct {
	svc       *PlaylistService
	playlists *mockPlaylists
	tracks    *mockTracks
}

func newPlaylistFixture(t *testing.T) *playlistFixture {
	t.Helper()
	f := &playlistFixture{
		playlists: &mockPlaylists{},
		tracks:    &mockTracks{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewPlaylistService(f.playlists, f.tracks, logger)
	return f
}

func ownedPlaylist() *domain.Playlist {
	return &domain.Playlist{ID: "p1", OwnerID: "user-1", Name: "Road Trip"}
}

func TestPlaylistCreate(t *testing.T) {
	f := newPlaylistFixture(t)

	f.playlists.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Playlist) bool {
		return p.OwnerID == "user-1" && p.Name == "Road Trip" && p.ID != ""
	})).Return(nil)

	playlist, err := f.svc.Create(context.Background(), "user-1", "  Road Trip ")
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", playlist.Name)
}

func TestPlaylistCreate_EmptyName(t *testing.T) {
	f := newPlaylistFixture(t)

	_, err := f.svc.Create(context.Background(), "user-1", "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPlaylistCreate_NameTooLong(t *testing.T) {
	f := newPlaylistFixture(t)

	_, err := f.svc.Create(context.Background(), "user-1", strings.Repeat("x", 121))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPlaylistListTracks_Owned(t *testing.T) {
	f := newPlaylistFixture(t)

	f.playlists.On("GetByID", mock.Anything, "p1").Return(ownedPlaylist(), nil)
	f.playlists.On("ListTracks", mock.Anything, "p1").Return([]domain.Track{{ID: "t1"}}, nil)

	tracks, err := f.svc.ListTracks(context.Background(), "user-1", "p1")
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
}

func TestPlaylistListTracks_OtherOwnerLooksMissing(t *testing.T) {
	f := newPlaylistFixture(t)

	f.playlists.On("GetByID", mock.Anything, "p1").Return(ownedPlaylist(), nil)

	_, err := f.svc.ListTracks(context.Background(), "user-2", "p1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	f.playlists.AssertNotCalled(t, "ListTracks", mock.Anything, mock.Anything)
}

func TestPlaylistToggleTrack_Add(t *testing.T) {
	f := newPlaylistFixture(t)

	f.playlists.On("GetByID", mock.Anything, "p1").Return(ownedPlaylist(), nil)
	f.tracks.On("GetByID", mock.Anything, "t1").Return(&domain.Track{ID: "t1"}, nil)
	f.playlists.On("ToggleTrack", mock.Anything, "p1", "t1").Return(true, nil)

	result, err := f.svc.ToggleTrack(context.Background(), "user-1", "p1", "t1")
	require.NoError(t, err)
	assert.True(t, result.Added)
}

func TestPlaylistToggleTrack_MissingTrack(t *testing.T) {
	f := newPlaylistFixture(t)

	f.playlists.On("GetByID", mock.Anything, "p1").Return(ownedPlaylist(), nil)
	f.tracks.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("track"))

	_, err := f.svc.ToggleTrack(context.Background(), "user-1", "p1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPlaylistToggleTrack_NotOwner(t *testing.T) {
	f := newPlaylistFixture(t)

	f.playlists.On("GetByID", mock.Anything, "p1").Return(ownedPlaylist(), nil)

	_, err := f.svc.ToggleTrack(context.Background(), "user-2", "p1", "t1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	f.playlists.AssertNotCalled(t, "ToggleTrack", mock.Anything, mock.Anything, mock.Anything)
}
