package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beatx/beatx-server/internal/service"
	"github.com/beatx/beatx-server/pkg/httputil"
	"github.com/beatx/beatx-server/pkg/validator"
)

// PlaylistHandler handles the playlist endpoints.
type PlaylistHandler struct {
	service *service.PlaylistService
	logger  *slog.Logger
}

// NewPlaylistHandler creates the playlist HTTP handler.
func NewPlaylistHandler(svc *service.PlaylistService, logger *slog.Logger) *PlaylistHandler {
	return &PlaylistHandler{
		service: svc,
		logger:  logger,
	}
}

// CreatePlaylistRequest is the JSON body for POST /playlists/create.
type CreatePlaylistRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// ToggleTrackRequest is the JSON body for POST /playlists/toggle-track.
type ToggleTrackRequest struct {
	PlaylistID string `json:"playlist_id" validate:"required,uuid"`
	TrackID    string `json:"track_id" validate:"required,uuid"`
}

// Create handles POST /playlists/create.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	var req CreatePlaylistRequest
	if !decodeBody(w, r, &req) {
		return
	}

	playlist, err := h.service.Create(r.Context(), claims.UserID(), req.Name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusCreated, "playlist created", map[string]any{"playlist": playlist})
}

// ListAll handles GET /playlists/get-all.
func (h *PlaylistHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	playlists, err := h.service.ListByOwner(r.Context(), claims.UserID())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "playlists fetched", map[string]any{"playlists": playlists})
}

// Tracks handles GET /playlists/tracks/{playlistId}.
func (h *PlaylistHandler) Tracks(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	playlistID := chi.URLParam(r, "playlistId")
	tracks, err := h.service.ListTracks(r.Context(), claims.UserID(), playlistID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "playlist tracks fetched", map[string]any{"tracks": tracks})
}

// ToggleTrack handles POST /playlists/toggle-track.
func (h *PlaylistHandler) ToggleTrack(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	var req ToggleTrackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.ToggleTrack(r.Context(), claims.UserID(), req.PlaylistID, req.TrackID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	message := "track removed from playlist"
	if result.Added {
		message = "track added to playlist"
	}
	httputil.OK(w, http.StatusOK, message, result)
}

// decodeBody reads and validates a JSON request body.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.Fail(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}
