package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beatx/beatx-server/internal/service"
	"github.com/beatx/beatx-server/pkg/health"
	"github.com/beatx/beatx-server/pkg/httputil"
	"github.com/beatx/beatx-server/pkg/middleware"
)

// RouterConfig carries the router's cross-cutting settings.
type RouterConfig struct {
	ServiceName    string
	Environment    string
	AllowedOrigins []string
}

// NewRouter creates the chi router with all routes registered.
func NewRouter(
	authService *service.AuthService,
	trackService *service.TrackService,
	playlistService *service.PlaylistService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins
	corsCfg.Environment = cfg.Environment

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httputil.OK(w, http.StatusOK, "beatx server is running", nil)
	})

	authHandler := NewAuthHandler(authService, logger)
	trackHandler := NewTrackHandler(trackService, logger)
	playlistHandler := NewPlaylistHandler(playlistService, logger)

	// Public auth surface. Logout lives here rather than behind the gate:
	// it parses the Authorization header itself so an already-revoked or
	// otherwise unverifiable token can still be revoked.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.Get("/verify-email", authHandler.VerifyEmail)

		// Protected account endpoints
		r.Group(func(r chi.Router) {
			r.Use(Authorize(authService, logger))
			r.Get("/profile", authHandler.Profile)
			r.Post("/update", authHandler.Update)
		})
	})

	// Protected catalog surface
	r.Group(func(r chi.Router) {
		r.Use(Authorize(authService, logger))

		r.Route("/tracks", func(r chi.Router) {
			r.Get("/", trackHandler.List)
			r.Post("/like", trackHandler.ToggleLike)
			r.Get("/liked", trackHandler.ListLiked)
			r.Get("/{id}/stream", trackHandler.Stream)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Post("/create", playlistHandler.Create)
			r.Get("/get-all", playlistHandler.ListAll)
			r.Get("/tracks/{playlistId}", playlistHandler.Tracks)
			r.Post("/toggle-track", playlistHandler.ToggleTrack)
		})
	})

	return r
}
