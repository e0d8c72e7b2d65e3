// Package video provisions short-lived telemedicine rooms for appointments.
package video

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/careflow-portal/internal/apperr"
	"github.com/wolfman30/careflow-portal/internal/auth"
	"github.com/wolfman30/careflow-portal/internal/observability/metrics"
	"github.com/wolfman30/careflow-portal/internal/store"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

var tracer = otel.Tracer("careflow.video")

const (
	defaultPrefix = "careflow"
	defaultTTL    = time.Hour
)

// Room is what callers receive after a successful provision.
type Room struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// RoomProvider creates rooms at the external video service.
type RoomProvider interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomResponse, error)
}

type appointmentLookup interface {
	GetAppointment(ctx context.Context, id string) (*store.Appointment, error)
}

// Options configures a Service.
type Options struct {
	// APIKey is the video provider credential. Empty means misconfigured.
	APIKey  string
	Prefix  string
	TTL     time.Duration
	Now     func() time.Time
	Logger  *logging.Logger
	Metrics *metrics.PortalMetrics
}

// Service implements room provisioning.
type Service struct {
	verifier     auth.Verifier
	appointments appointmentLookup
	provider     RoomProvider
	apiKey       string
	prefix       string
	ttl          time.Duration
	now          func() time.Time
	lastStamp    atomic.Int64
	logger       *logging.Logger
	metrics      *metrics.PortalMetrics
}

// NewService wires the provisioning flow to its collaborators.
func NewService(verifier auth.Verifier, appointments appointmentLookup, provider RoomProvider, opts Options) *Service {
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Service{
		verifier:     verifier,
		appointments: appointments,
		provider:     provider,
		apiKey:       strings.TrimSpace(opts.APIKey),
		prefix:       opts.Prefix,
		ttl:          opts.TTL,
		now:          opts.Now,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
}

// CreateRoom authenticates the caller, confirms they own the appointment and
// only then asks the provider for a new room. Every call creates a distinct
// room. Panics are converted into an internal error.
func (s *Service) CreateRoom(ctx context.Context, authToken, appointmentID string) (room *Room, err error) {
	ctx, span := tracer.Start(ctx, "video.create_room")
	defer span.End()
	span.SetAttributes(attribute.String("appointment_id", appointmentID))

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while creating video room", "appointment_id", appointmentID, "panic", fmt.Sprint(r))
			room, err = nil, apperr.NewInternal(fmt.Errorf("video: panic: %v", r))
		}
		outcome := "success"
		if err != nil {
			outcome = string(apperr.KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		s.metrics.ObserveRoom(outcome)
	}()

	return s.createRoom(ctx, authToken, appointmentID)
}

func (s *Service) createRoom(ctx context.Context, authToken, appointmentID string) (*Room, error) {
	if strings.TrimSpace(authToken) == "" {
		return nil, apperr.NewUnauthorized("Unauthorized")
	}
	identity, err := s.verifier.Verify(ctx, authToken)
	if err != nil {
		s.logger.Warn("video room auth rejected", "appointment_id", appointmentID, "error", err)
		if apperr.KindOf(err) == apperr.KindUnauthorized {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindUnauthorized, "Unauthorized", err)
	}

	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return nil, apperr.NewInvalidRequest("Appointment ID is required")
	}

	appt, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("video room requested for unknown appointment", "appointment_id", appointmentID, "user_id", identity.UserID)
			return nil, apperr.NewForbidden("Forbidden")
		}
		s.logger.Error("failed to load appointment", "appointment_id", appointmentID, "error", err)
		return nil, apperr.NewInternal(err)
	}
	if appt.UserID != identity.UserID {
		s.logger.Warn("video room requested by non-owner", "appointment_id", appointmentID, "user_id", identity.UserID)
		return nil, apperr.NewForbidden("Forbidden")
	}

	if s.apiKey == "" {
		s.logger.Error("video provider key not configured", "appointment_id", appointmentID)
		return nil, apperr.NewServiceUnavailable("Video service not configured")
	}

	now := s.now()
	req := CreateRoomRequest{
		Name:    s.roomName(appointmentID, now),
		Privacy: "public",
		Properties: RoomProperties{
			Exp:               now.Add(s.ttl).Unix(),
			EnableChat:        true,
			EnableScreenshare: true,
			EnableKnocking:    false,
			StartVideoOff:     false,
			StartAudioOff:     false,
		},
	}

	started := time.Now()
	resp, err := s.provider.CreateRoom(ctx, req)
	if err != nil {
		s.metrics.ObserveProviderLatency(string(apperr.KindUpstream), time.Since(started).Seconds())
		var perr *ProviderError
		if errors.As(err, &perr) {
			s.logger.Error("video provider rejected room", "appointment_id", appointmentID,
				"room_name", req.Name, "status", perr.StatusCode, "body", perr.Body)
		} else {
			s.logger.Error("video provider call failed", "appointment_id", appointmentID,
				"room_name", req.Name, "error", err)
		}
		return nil, apperr.NewUpstream("Failed to create video room", err)
	}
	s.metrics.ObserveProviderLatency("success", time.Since(started).Seconds())

	name := resp.Name
	if name == "" {
		name = req.Name
	}
	s.logger.Info("video room created", "appointment_id", appointmentID, "user_id", identity.UserID, "room_name", name)
	return &Room{URL: resp.URL, Name: name}, nil
}

// roomName returns <prefix>-<appointmentID>-<unix millis>. The millisecond
// stamp is strictly increasing per Service so two calls never collide.
func (s *Service) roomName(appointmentID string, now time.Time) string {
	return s.prefix + "-" + appointmentID + "-" + strconv.FormatInt(s.nextStamp(now.UnixMilli()), 10)
}

func (s *Service) nextStamp(ms int64) int64 {
	for {
		last := s.lastStamp.Load()
		next := ms
		if next <= last {
			next = last + 1
		}
		if s.lastStamp.CompareAndSwap(last, next) {
			return next
		}
	}
}
