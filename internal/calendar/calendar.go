// Package calendar projects appointments onto calendar events and applies
// drag and resize edits back to the stored appointment.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/careflow-portal/internal/apperr"
	"github.com/wolfman30/careflow-portal/internal/store"
	"github.com/wolfman30/careflow-portal/internal/timeofday"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "3:04 PM"
)

// Event is one calendar entry.
type Event struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Telemedicine  bool   `json:"telemedicine"`
	WrapsMidnight bool   `json:"wrapsMidnight"`
	Specialty     string `json:"specialty,omitempty"`
	Type          string `json:"type"`
	Status        string `json:"status"`
}

// FromAppointment builds the event for a. The end keeps the appointment's date
// even when the 30 minute window runs past midnight; WrapsMidnight flags it.
func FromAppointment(a store.Appointment) Event {
	start := timeofday.To24Hour(a.Time)
	return Event{
		ID:            a.ID,
		Title:         a.DoctorName + " - " + a.Type,
		Start:         a.Date + "T" + start,
		End:           a.Date + "T" + timeofday.EventEnd(start),
		Telemedicine:  a.Telemedicine,
		WrapsMidnight: timeofday.WrapsMidnight(start, timeofday.DefaultEventDuration),
		Specialty:     a.DoctorSpecialty,
		Type:          a.Type,
		Status:        a.Status,
	}
}

type appointmentStore interface {
	ListAppointments(ctx context.Context, userID string) ([]store.Appointment, error)
	RescheduleAppointment(ctx context.Context, id, userID, date, clock string) error
}

// Service serves a user's calendar.
type Service struct {
	store  appointmentStore
	logger *logging.Logger
}

// NewService wires the calendar to its appointment store.
func NewService(s appointmentStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: s, logger: logger}
}

// Events returns the user's appointments as calendar events.
func (s *Service) Events(ctx context.Context, userID string) ([]Event, error) {
	appts, err := s.store.ListAppointments(ctx, userID)
	if err != nil {
		return nil, apperr.NewInternal(fmt.Errorf("calendar: list: %w", err))
	}
	events := make([]Event, 0, len(appts))
	for _, a := range appts {
		events = append(events, FromAppointment(a))
	}
	return events, nil
}

// Reschedule stores newStart as the appointment's date and 12-hour time.
// Drops and resizes both land here; only the start is persisted.
func (s *Service) Reschedule(ctx context.Context, userID, appointmentID string, newStart time.Time) error {
	if strings.TrimSpace(appointmentID) == "" {
		return apperr.NewInvalidRequest("Appointment ID is required")
	}
	if newStart.IsZero() {
		return apperr.NewInvalidRequest("start is required")
	}

	date := newStart.Format(dateLayout)
	clock := newStart.Format(timeLayout)
	if err := s.store.RescheduleAppointment(ctx, appointmentID, userID, date, clock); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NewNotFound("Appointment not found")
		}
		return apperr.NewInternal(fmt.Errorf("calendar: reschedule: %w", err))
	}
	s.logger.Info("appointment rescheduled", "appointment_id", appointmentID, "user_id", userID,
		"appointment_date", date, "appointment_time", clock)
	return nil
}
