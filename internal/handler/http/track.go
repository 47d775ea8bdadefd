package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beatx/beatx-server/internal/service"
	"github.com/beatx/beatx-server/pkg/httputil"
)

// TrackHandler handles the catalog endpoints.
type TrackHandler struct {
	service *service.TrackService
	logger  *slog.Logger
}

// NewTrackHandler creates the track HTTP handler.
func NewTrackHandler(svc *service.TrackService, logger *slog.Logger) *TrackHandler {
	return &TrackHandler{
		service: svc,
		logger:  logger,
	}
}

// ToggleLikeRequest is the JSON body for POST /tracks/like.
type ToggleLikeRequest struct {
	TrackID string `json:"track_id" validate:"required,uuid"`
}

// List handles GET /tracks.
func (h *TrackHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	tracks, err := h.service.List(r.Context(), claims.UserID())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "tracks fetched", map[string]any{"tracks": tracks})
}

// ToggleLike handles POST /tracks/like.
func (h *TrackHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	var req ToggleLikeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	liked, err := h.service.ToggleLike(r.Context(), claims.UserID(), req.TrackID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	message := "track unliked"
	if liked {
		message = "track liked"
	}
	httputil.OK(w, http.StatusOK, message, map[string]any{"liked": liked})
}

// ListLiked handles GET /tracks/liked.
func (h *TrackHandler) ListLiked(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.Fail(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	tracks, err := h.service.ListLiked(r.Context(), claims.UserID())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "liked tracks fetched", map[string]any{"tracks": tracks})
}

// Stream handles GET /tracks/{id}/stream.
func (h *TrackHandler) Stream(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "id")

	grant, err := h.service.Stream(r.Context(), trackID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, http.StatusOK, "stream url generated", grant)
}
