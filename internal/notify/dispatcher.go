// Package notify renders patient notifications and hands them to an email
// delivery provider.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/careflow-portal/internal/apperr"
	"github.com/wolfman30/careflow-portal/internal/observability/metrics"
	"github.com/wolfman30/careflow-portal/internal/store"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

// Request is one notification to deliver.
type Request struct {
	Type   Kind   `json:"type"`
	UserID string `json:"user_id"`
	Data   Data   `json:"data"`
}

type profileLookup interface {
	GetContactProfile(ctx context.Context, userID string) (*store.Profile, error)
}

// Dispatcher sends exactly one email per Dispatch call. It never retries;
// the scheduler that invokes it owns retry policy.
type Dispatcher struct {
	profiles profileLookup
	sender   EmailSender
	logger   *logging.Logger
	metrics  *metrics.PortalMetrics
}

func NewDispatcher(profiles profileLookup, sender EmailSender, logger *logging.Logger, m *metrics.PortalMetrics) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{profiles: profiles, sender: sender, logger: logger, metrics: m}
}

// Dispatch resolves the recipient, renders the template for req.Type and
// sends it.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (receipt *Receipt, err error) {
	logger := d.logger.With("notification_type", string(req.Type), "user_id", req.UserID)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while dispatching notification", "panic", fmt.Sprint(r))
			receipt, err = nil, apperr.NewInternal(fmt.Errorf("notify: panic: %v", r))
		}
		outcome := "success"
		if err != nil {
			outcome = string(apperr.KindOf(err))
		}
		d.metrics.ObserveNotification(metricType(req.Type), outcome)
	}()

	logger.Info("processing notification")

	if strings.TrimSpace(req.UserID) == "" {
		return nil, apperr.NewNotFound("User email not found")
	}
	profile, err := d.profiles.GetContactProfile(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("notification recipient has no profile")
			return nil, apperr.NewNotFound("User email not found")
		}
		logger.Error("failed to load contact profile", "error", err)
		return nil, apperr.NewInternal(err)
	}
	if strings.TrimSpace(profile.Email) == "" {
		logger.Warn("notification recipient has no email on file")
		return nil, apperr.NewNotFound("User email not found")
	}

	subject, html, err := Render(req.Type, profile.FirstName, req.Data)
	if err != nil {
		logger.Warn("notification not rendered", "error", err)
		return nil, err
	}

	sent, err := d.sender.Send(ctx, EmailMessage{
		To:      profile.Email,
		ToName:  profile.FirstName,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		logger.Error("notification delivery failed", "error", err)
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.NewUpstream("Failed to send notification", err)
	}

	logger.Info("notification sent", "message_id", sent.ID, "provider", sent.Provider)
	return &sent, nil
}

// metricType keeps caller-supplied type strings out of metric labels.
func metricType(k Kind) string {
	if k.Valid() {
		return string(k)
	}
	return "invalid"
}
