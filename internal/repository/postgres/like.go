package postgres

import (
	"context"
	"fmt"

	"github.com/beatx/beatx-server/internal/domain"
	"github.com/beatx/beatx-server/pkg/database"
)

// LikeRepository manages per-user track likes in PostgreSQL.
type LikeRepository struct {
	pool database.DBTX
}

// NewLikeRepository creates a PostgreSQL-backed like repository.
func NewLikeRepository(pool database.DBTX) *LikeRepository {
	return &LikeRepository{pool: pool}
}

// Toggle flips the like state for (userID, trackID). A delete that removes a
// row means the track was liked and is now unliked; otherwise an insert
// creates the like.
func (r *LikeRepository) Toggle(ctx context.Context, userID, trackID string) (bool, error) {
	const del = `DELETE FROM track_likes WHERE user_id = $1 AND track_id = $2`

	tag, err := r.pool.Exec(ctx, del, userID, trackID)
	if err != nil {
		return false, fmt.Errorf("unlike track: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	const ins = `
		INSERT INTO track_likes (user_id, track_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, track_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, ins, userID, trackID); err != nil {
		return false, fmt.Errorf("like track: %w", err)
	}
	return true, nil
}

// ListByUser returns the user's liked tracks, most recently liked first.
func (r *LikeRepository) ListByUser(ctx context.Context, userID string) ([]domain.Track, error) {
	const query = `
		SELECT t.id, t.title, t.artist, COALESCE(t.album, ''), t.duration,
		       t.file_key, COALESCE(t.cover_url, ''), t.created_at,
		       TRUE AS liked
		FROM track_likes tl
		JOIN tracks t ON t.id = tl.track_id
		WHERE tl.user_id = $1
		ORDER BY tl.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list liked tracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}
