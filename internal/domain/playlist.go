package domain

import "time"

// Playlist is a user-owned ordered collection of tracks.
type Playlist struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	TrackCount int       `json:"track_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlaylistToggleResult reports the outcome of toggling a track's membership
// in a playlist.
type PlaylistToggleResult struct {
	PlaylistID string `json:"playlist_id"`
	TrackID    string `json:"track_id"`
	Added      bool   `json:"added"`
}
