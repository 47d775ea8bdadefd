package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatx/beatx-server/internal/domain"
	"github.com/beatx/beatx-server/pkg/database"
	apperrors "github.com/beatx/beatx-server/pkg/errors"
)

func newPlaylistRepo(t *testing.T) (*PlaylistRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewPlaylistRepository(mock), mock
}

func TestPlaylists_Create(t *testing.T) {
	repo, mock := newPlaylistRepo(t)

	p := &domain.Playlist{
		ID:        "p1",
		OwnerID:   "user-1",
		Name:      "Road Trip",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO playlists").
		WithArgs(p.ID, p.OwnerID, p.Name, p.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), p)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaylists_ListByOwner(t *testing.T) {
	repo, mock := newPlaylistRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM playlists p").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "created_at", "track_count"}).
			AddRow("p1", "user-1", "Road Trip", now, 3).
			AddRow("p2", "user-1", "Focus", now, 0))

	playlists, err := repo.ListByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, playlists, 2)
	assert.Equal(t, 3, playlists[0].TrackCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaylists_GetByID_NotFound(t *testing.T) {
	repo, mock := newPlaylistRepo(t)

	mock.ExpectQuery("FROM playlists p").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "created_at", "track_count"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaylists_ListTracks(t *testing.T) {
	repo, mock := newPlaylistRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM playlist_tracks pt").
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows(trackColumns()).
			AddRow("t1", "Song A", "Artist A", "", 180, "tracks/a.mp3", "", now, false))

	tracks, err := repo.ListTracks(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Song A", tracks[0].Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaylists_ToggleTrack_Add(t *testing.T) {
	repo, mock := newPlaylistRepo(t)

	mock.ExpectExec("DELETE FROM playlist_tracks").
		WithArgs("p1", "t1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	mock.ExpectExec("INSERT INTO playlist_tracks").
		WithArgs("p1", "t1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	added, err := repo.ToggleTrack(context.Background(), "p1", "t1")
	require.NoError(t, err)
	assert.True(t, added)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaylists_ToggleTrack_Remove(t *testing.T) {
	repo, mock := newPlaylistRepo(t)

	mock.ExpectExec("DELETE FROM playlist_tracks").
		WithArgs("p1", "t1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	added, err := repo.ToggleTrack(context.Background(), "p1", "t1")
	require.NoError(t, err)
	assert.False(t, added)

	assert.NoError(t, mock.ExpectationsWereMet())
}
