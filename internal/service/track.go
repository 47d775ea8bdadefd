package service

import (
	"context"
	"log/slog"

	"github.com/beatx/beatx-server/internal/domain"
	"github.com/beatx/beatx-server/internal/event"
	"github.com/beatx/beatx-server/internal/repository"
	"github.com/beatx/beatx-server/internal/storage"
	apperrors "github.com/beatx/beatx-server/pkg/errors"
)

// TrackService serves the catalog, likes, and stream grants.
type TrackService struct {
	tracks repository.TrackRepository
	likes  repository.LikeRepository
	signer storage.Signer
	events event.Publisher
	logger *slog.Logger
}

// NewTrackService wires the track service.
func NewTrackService(
	tracks repository.TrackRepository,
	likes repository.LikeRepository,
	signer storage.Signer,
	events event.Publisher,
	logger *slog.Logger,
) *TrackService {
	return &TrackService{
		tracks: tracks,
		likes:  likes,
		signer: signer,
		events: events,
		logger: logger,
	}
}

// List returns the catalog with the caller's like flags.
func (s *TrackService) List(ctx context.Context, userID string) ([]domain.Track, error) {
	return s.tracks.List(ctx, userID)
}

// ListLiked returns the caller's liked tracks.
func (s *TrackService) ListLiked(ctx context.Context, userID string) ([]domain.Track, error) {
	return s.likes.ListByUser(ctx, userID)
}

// ToggleLike flips the caller's like on a track. The track must exist.
func (s *TrackService) ToggleLike(ctx context.Context, userID, trackID string) (bool, error) {
	if trackID == "" {
		return false, apperrors.InvalidInput("track_id is required")
	}
	if _, err := s.tracks.GetByID(ctx, trackID); err != nil {
		return false, err
	}

	liked, err := s.likes.Toggle(ctx, userID, trackID)
	if err != nil {
		return false, apperrors.Internal(err)
	}

	if pubErr := s.events.PublishTrackLiked(ctx, userID, trackID, liked); pubErr != nil {
		s.logger.WarnContext(ctx, "failed to publish track.liked",
			slog.String("error", pubErr.Error()),
		)
	}
	return liked, nil
}

// Stream returns a short-lived signed URL for the track's audio object.
func (s *TrackService) Stream(ctx context.Context, trackID string) (*domain.StreamGrant, error) {
	track, err := s.tracks.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	return s.signer.SignTrack(ctx, track.FileKey)
}
