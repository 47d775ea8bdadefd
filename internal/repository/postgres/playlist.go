package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/beatx/beatx-server/internal/domain"
	"github.com/beatx/beatx-server/pkg/database"
	apperrors "github.com/beatx/beatx-server/pkg/errors"
)

// PlaylistRepository manages playlists and their track membership in
// PostgreSQL.
type PlaylistRepository struct {
	pool database.DBTX
}

// NewPlaylistRepository creates a PostgreSQL-backed playlist repository.
func NewPlaylistRepository(pool database.DBTX) *PlaylistRepository {
	return &PlaylistRepository{pool: pool}
}

// Create inserts a new playlist.
func (r *PlaylistRepository) Create(ctx context.Context, p *domain.Playlist) error {
	const query = `
		INSERT INTO playlists (id, owner_id, name, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, p.ID, p.OwnerID, p.Name, p.CreatedAt); err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's playlists with track counts, newest first.
func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	const query = `
		SELECT p.id, p.owner_id, p.name, p.created_at,
		       COUNT(pt.track_id) AS track_count
		FROM playlists p
		LEFT JOIN playlist_tracks pt ON pt.playlist_id = p.id
		WHERE p.owner_id = $1
		GROUP BY p.id
		ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := []domain.Playlist{}
	for rows.Next() {
		var p domain.Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.CreatedAt, &p.TrackCount); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// GetByID fetches one playlist. Ownership is the caller's concern.
func (r *PlaylistRepository) GetByID(ctx context.Context, id string) (*domain.Playlist, error) {
	const query = `
		SELECT p.id, p.owner_id, p.name, p.created_at,
		       (SELECT COUNT(*) FROM playlist_tracks pt WHERE pt.playlist_id = p.id) AS track_count
		FROM playlists p
		WHERE p.id = $1`

	var p domain.Playlist
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.CreatedAt, &p.TrackCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("playlist")
		}
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	return &p, nil
}

// ListTracks returns the playlist's tracks in insertion order.
func (r *PlaylistRepository) ListTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	const query = `
		SELECT t.id, t.title, t.artist, COALESCE(t.album, ''), t.duration,
		       t.file_key, COALESCE(t.cover_url, ''), t.created_at,
		       FALSE AS liked
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		WHERE pt.playlist_id = $1
		ORDER BY pt.added_at ASC`

	rows, err := r.pool.Query(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist tracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}

// ToggleTrack flips the track's membership in the playlist.
func (r *PlaylistRepository) ToggleTrack(ctx context.Context, playlistID, trackID string) (bool, error) {
	const del = `DELETE FROM playlist_tracks WHERE playlist_id = $1 AND track_id = $2`

	tag, err := r.pool.Exec(ctx, del, playlistID, trackID)
	if err != nil {
		return false, fmt.Errorf("remove playlist track: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	const ins = `
		INSERT INTO playlist_tracks (playlist_id, track_id)
		VALUES ($1, $2)
		ON CONFLICT (playlist_id, track_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, ins, playlistID, trackID); err != nil {
		return false, fmt.Errorf("add playlist track: %w", err)
	}
	return true, nil
}
