package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatx/beatx-server/pkg/database"
	apperrors "github.com/beatx/beatx-server/pkg/errors"
)

func newTrackRepo(t *testing.T) (*TrackRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewTrackRepository(mock), mock
}

func trackColumns() []string {
	return []string{"id", "title", "artist", "album", "duration", "file_key", "cover_url", "created_at", "liked"}
}

func TestTracks_List_WithUser(t *testing.T) {
	repo, mock := newTrackRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM tracks t").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(trackColumns()).
			AddRow("t1", "Song A", "Artist A", "Album A", 180, "tracks/a.mp3", "", now, true).
			AddRow("t2", "Song B", "Artist B", "", 240, "tracks/b.mp3", "covers/b.png", now, false))

	tracks, err := repo.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.True(t, tracks[0].Liked)
	assert.False(t, tracks[1].Liked)
	assert.Equal(t, "tracks/a.mp3", tracks[0].FileKey)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTracks_List_Anonymous(t *testing.T) {
	repo, mock := newTrackRepo(t)

	mock.ExpectQuery("FROM tracks t").
		WithArgs(nil).
		WillReturnRows(pgxmock.NewRows(trackColumns()))

	tracks, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, tracks)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTracks_GetByID(t *testing.T) {
	repo, mock := newTrackRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM tracks").
		WithArgs("t1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "artist", "album", "duration", "file_key", "cover_url", "created_at"}).
			AddRow("t1", "Song A", "Artist A", "", 180, "tracks/a.mp3", "", now))

	track, err := repo.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Song A", track.Title)
	assert.Equal(t, "tracks/a.mp3", track.FileKey)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTracks_GetByID_NotFound(t *testing.T) {
	repo, mock := newTrackRepo(t)

	mock.ExpectQuery("FROM tracks").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "artist", "album", "duration", "file_key", "cover_url", "created_at"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTracks_List_QueryError(t *testing.T) {
	repo, mock := newTrackRepo(t)

	mock.ExpectQuery("FROM tracks t").
		WithArgs(nil).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background(), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "list tracks")

	assert.NoError(t, mock.ExpectationsWereMet())
}
