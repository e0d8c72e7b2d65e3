package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/careflow-portal/internal/auth"
	"github.com/wolfman30/careflow-portal/internal/calendar"
	httpmiddleware "github.com/wolfman30/careflow-portal/internal/http/middleware"
	"github.com/wolfman30/careflow-portal/internal/http/respond"
	"github.com/wolfman30/careflow-portal/internal/observability/metrics"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger        *logging.Logger
	VideoRooms    http.Handler
	Notifications http.Handler
	Calendar      *calendar.Handler
	// Verifier guards the calendar API and keys the room rate limit. The
	// portal functions authenticate inside their own services.
	Verifier auth.Verifier

	// RoomLimiter throttles room provisioning per caller; nil disables it.
	RoomLimiter httpmiddleware.Limiter
	Metrics     *metrics.PortalMetrics

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/functions/v1", func(fn chi.Router) {
		if cfg.VideoRooms != nil {
			rooms := fn.With()
			if cfg.RoomLimiter != nil {
				rooms = fn.With(httpmiddleware.RateLimit(cfg.RoomLimiter, cfg.Verifier, "create-video-room", cfg.Metrics, cfg.Logger))
			}
			rooms.Method(http.MethodPost, "/create-video-room", cfg.VideoRooms)
		}
		if cfg.Notifications != nil {
			fn.Method(http.MethodPost, "/send-notifications", cfg.Notifications)
		}
	})

	if cfg.Calendar != nil && cfg.Verifier != nil {
		r.Group(func(api chi.Router) {
			api.Use(httpmiddleware.BearerAuth(cfg.Verifier, cfg.Logger))
			api.Get("/api/calendar/events", cfg.Calendar.ListEvents)
			api.Patch("/api/appointments/{id}/schedule", cfg.Calendar.Reschedule)
		})
	}

	return r
}
