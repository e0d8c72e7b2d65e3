// Package bootstrap wires the portal services from configuration. Both the
// HTTP server and the Lambda entrypoint build their handler here.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/careflow-portal/internal/api/router"
	"github.com/wolfman30/careflow-portal/internal/auth"
	"github.com/wolfman30/careflow-portal/internal/calendar"
	appconfig "github.com/wolfman30/careflow-portal/internal/config"
	httpmiddleware "github.com/wolfman30/careflow-portal/internal/http/middleware"
	"github.com/wolfman30/careflow-portal/internal/notify"
	"github.com/wolfman30/careflow-portal/internal/observability/metrics"
	"github.com/wolfman30/careflow-portal/internal/store"
	"github.com/wolfman30/careflow-portal/internal/video"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

// PortalStore is the data access the portal services need.
type PortalStore interface {
	GetAppointment(ctx context.Context, id string) (*store.Appointment, error)
	ListAppointments(ctx context.Context, userID string) ([]store.Appointment, error)
	RescheduleAppointment(ctx context.Context, id, userID, date, clock string) error
	GetContactProfile(ctx context.Context, userID string) (*store.Profile, error)
}

// Deps carries the clients built outside this package. Nil fields are
// optional.
type Deps struct {
	Store      PortalStore
	Redis      *redis.Client
	SES        *sesv2.Client
	HTTPClient *http.Client
	Registry   *prometheus.Registry
}

// Portal is the assembled HTTP surface.
type Portal struct {
	Handler  http.Handler
	Registry *prometheus.Registry
}

// Connect opens the data store named by cfg. A missing store URL fails fast
// with a configuration error.
func Connect(ctx context.Context, cfg *appconfig.Config) (*store.Store, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if err := cfg.Require(appconfig.KeyDataStoreURL); err != nil {
		return nil, nil, err
	}
	pool, err := store.Connect(ctx, cfg.DatabaseURL, cfg.DataStoreKey)
	if err != nil {
		return nil, nil, err
	}
	return store.New(pool), pool.Close, nil
}

// BuildPortal assembles services, middleware and routes.
func BuildPortal(cfg *appconfig.Config, logger *logging.Logger, deps Deps) (*Portal, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("bootstrap: store is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	portalMetrics := metrics.NewPortalMetrics(reg)

	if cfg.AuthJWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET not set; every authenticated call will be rejected")
	}
	verifier := auth.NewJWTVerifier(cfg.AuthJWTSecret, cfg.AuthJWTAudience)

	daily := video.NewDailyClient(video.DailyConfig{
		APIKey:     cfg.DailyAPIKey,
		BaseURL:    cfg.DailyAPIBaseURL,
		Timeout:    cfg.ProviderTimeout,
		HTTPClient: deps.HTTPClient,
		Logger:     logger,
	})
	rooms := video.NewService(verifier, deps.Store, daily, video.Options{
		APIKey:  cfg.DailyAPIKey,
		Prefix:  cfg.VideoRoomPrefix,
		TTL:     cfg.VideoRoomTTL,
		Logger:  logger,
		Metrics: portalMetrics,
	})

	// A nil *sesv2.Client must reach NewSender as an untyped nil, not as a
	// non-nil interface holding a nil pointer.
	var sender notify.EmailSender
	if deps.SES != nil {
		sender = notify.NewSender(cfg, deps.SES, logger)
	} else {
		sender = notify.NewSender(cfg, nil, logger)
	}
	dispatcher := notify.NewDispatcher(deps.Store, sender, logger, portalMetrics)

	events := calendar.NewService(deps.Store, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		VideoRooms:         video.NewHandler(rooms, logger),
		Notifications:      notify.NewHandler(dispatcher, logger),
		Calendar:           calendar.NewHandler(events, logger),
		Verifier:           verifier,
		Metrics:            portalMetrics,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.RoomRateLimitPerMinute > 0 {
		routerCfg.RoomLimiter = httpmiddleware.NewLimiter(deps.Redis, cfg.RoomRateLimitPerMinute)
	}

	logger.Info("portal wired",
		"email_provider", cfg.EmailProvider,
		"video_configured", cfg.DailyAPIKey != "",
		"redis_rate_limit", deps.Redis != nil,
	)
	return &Portal{Handler: router.New(routerCfg), Registry: reg}, nil
}
