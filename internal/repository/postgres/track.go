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

// TrackRepository reads the track catalog from PostgreSQL.
type TrackRepository struct {
	pool database.DBTX
}

// NewTrackRepository creates a PostgreSQL-backed track repository.
func NewTrackRepository(pool database.DBTX) *TrackRepository {
	return &TrackRepository{pool: pool}
}

// List returns the catalog with per-user like flags when userID is set.
func (r *TrackRepository) List(ctx context.Context, userID string) ([]domain.Track, error) {
	const query = `
		SELECT t.id, t.title, t.artist, COALESCE(t.album, ''), t.duration,
		       t.file_key, COALESCE(t.cover_url, ''), t.created_at,
		       (tl.track_id IS NOT NULL) AS liked
		FROM tracks t
		LEFT JOIN track_likes tl ON tl.track_id = t.id AND tl.user_id = $1
		ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query, nullableID(userID))
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}

// GetByID fetches one track including its storage file key.
func (r *TrackRepository) GetByID(ctx context.Context, id string) (*domain.Track, error) {
	const query = `
		SELECT id, title, artist, COALESCE(album, ''), duration,
		       file_key, COALESCE(cover_url, ''), created_at
		FROM tracks
		WHERE id = $1`

	var t domain.Track
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Artist, &t.Album, &t.Duration,
		&t.FileKey, &t.CoverURL, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("track")
		}
		return nil, fmt.Errorf("get track: %w", err)
	}
	return &t, nil
}

// nullableID maps the empty string to NULL so LEFT JOIN conditions on user
// IDs never match for anonymous callers.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

// scanTracks drains rows produced by the track+liked column list.
func scanTracks(rows pgx.Rows) ([]domain.Track, error) {
	tracks := []domain.Track{}
	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Artist, &t.Album, &t.Duration,
			&t.FileKey, &t.CoverURL, &t.CreatedAt, &t.Liked,
		); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return tracks, nil
}
