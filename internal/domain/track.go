package domain

import "time"

// Track is a catalog entry. FileKey locates the audio object in storage and
// is never serialized to clients; streaming goes through short-lived signed
// URLs instead.
type Track struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Album     string    `json:"album,omitempty"`
	Duration  int       `json:"duration"`
	FileKey   string    `json:"-"`
	CoverURL  string    `json:"cover_url,omitempty"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
}

// StreamGrant is a short-lived signed URL for streaming a track.
type StreamGrant struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int64     `json:"expires_in"`
}
