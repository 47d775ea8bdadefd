// Package repository defines the persistence interfaces for the auth ledgers
// and the track catalog.
package repository

import (
	"context"
	"time"

	"github.com/beatx/beatx-server/internal/domain"
)

// ResendLogRepository tracks when a verification email was last sent per
// address, enforcing the resend cooldown.
type ResendLogRepository interface {
	// TryReserve atomically claims the next send slot for email. When the
	// cooldown window is still open it returns ok=false and the remaining
	// window duration; when the claim succeeds it records now as the last
	// send time and returns ok=true.
	TryReserve(ctx context.Context, email string, now time.Time, window time.Duration) (remaining time.Duration, ok bool, err error)
}

// RevocationRepository is the ledger of revoked access tokens. Entries live
// until the token's natural expiry, after which they are pruned.
type RevocationRepository interface {
	// Insert records a revoked token with its natural expiry.
	Insert(ctx context.Context, token string, expiresAt time.Time) error

	// IsRevoked reports whether the token is on the ledger.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// PurgeExpired removes entries whose tokens have expired on their own
	// and returns how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// TrackRepository reads the track catalog.
type TrackRepository interface {
	// List returns the catalog. When userID is non-empty each track's
	// Liked flag reflects that user's likes.
	List(ctx context.Context, userID string) ([]domain.Track, error)

	// GetByID fetches one track, including its storage file key.
	GetByID(ctx context.Context, id string) (*domain.Track, error)
}

// LikeRepository manages per-user track likes.
type LikeRepository interface {
	// Toggle flips the like state for (userID, trackID) and reports the
	// resulting state.
	Toggle(ctx context.Context, userID, trackID string) (liked bool, err error)

	// ListByUser returns the tracks the user has liked, most recent first.
	ListByUser(ctx context.Context, userID string) ([]domain.Track, error)
}

// PlaylistRepository manages user playlists and their track membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *domain.Playlist) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Playlist, error)

	// GetByID fetches one playlist regardless of owner; callers enforce
	// ownership.
	GetByID(ctx context.Context, id string) (*domain.Playlist, error)

	ListTracks(ctx context.Context, playlistID string) ([]domain.Track, error)

	// ToggleTrack flips the track's membership in the playlist and reports
	// whether it ended up added.
	ToggleTrack(ctx context.Context, playlistID, trackID string) (added bool, err error)
}
