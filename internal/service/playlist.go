package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beatx/beatx-server/internal/domain"
	"github.com/beatx/beatx-server/internal/repository"
	apperrors "github.com/beatx/beatx-server/pkg/errors"
)

// PlaylistService manages user playlists. All reads and writes are scoped to
// the owner; requests against someone else's playlist come back as not found
// so the API never confirms the playlist exists.
type PlaylistService struct {
	playlists repository.PlaylistRepository
	tracks    repository.TrackRepository
	logger    *slog.Logger
}

// NewPlaylistService wires the playlist service.
func NewPlaylistService(
	playlists repository.PlaylistRepository,
	tracks repository.TrackRepository,
	logger *slog.Logger,
) *PlaylistService {
	return &PlaylistService{
		playlists: playlists,
		tracks:    tracks,
		logger:    logger,
	}
}

// Create makes a new playlist owned by ownerID.
func (s *PlaylistService) Create(ctx context.Context, ownerID, name string) (*domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("playlist name is required")
	}
	if len(name) > 120 {
		return nil, apperrors.InvalidInput("playlist name is too long")
	}

	playlist := &domain.Playlist{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, apperrors.Internal(err)
	}
	return playlist, nil
}

// ListByOwner returns the caller's playlists.
func (s *PlaylistService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	return s.playlists.ListByOwner(ctx, ownerID)
}

// ListTracks returns the tracks in one of the caller's playlists.
func (s *PlaylistService) ListTracks(ctx context.Context, ownerID, playlistID string) ([]domain.Track, error) {
	if _, err := s.ownedPlaylist(ctx, ownerID, playlistID); err != nil {
		return nil, err
	}
	return s.playlists.ListTracks(ctx, playlistID)
}

// ToggleTrack flips a track's membership in one of the caller's playlists.
func (s *PlaylistService) ToggleTrack(ctx context.Context, ownerID, playlistID, trackID string) (*domain.PlaylistToggleResult, error) {
	if trackID == "" {
		return nil, apperrors.InvalidInput("track_id is required")
	}
	if _, err := s.ownedPlaylist(ctx, ownerID, playlistID); err != nil {
		return nil, err
	}
	if _, err := s.tracks.GetByID(ctx, trackID); err != nil {
		return nil, err
	}

	added, err := s.playlists.ToggleTrack(ctx, playlistID, trackID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &domain.PlaylistToggleResult{
		PlaylistID: playlistID,
		TrackID:    trackID,
		Added:      added,
	}, nil
}

// ownedPlaylist fetches the playlist and enforces ownership, collapsing
// "exists but not yours" into not found.
func (s *PlaylistService) ownedPlaylist(ctx context.Context, ownerID, playlistID string) (*domain.Playlist, error) {
	if playlistID == "" {
		return nil, apperrors.InvalidInput("playlist_id is required")
	}
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != ownerID {
		return nil, apperrors.NotFound("playlist")
	}
	return playlist, nil
}
