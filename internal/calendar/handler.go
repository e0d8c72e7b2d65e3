package calendar

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/careflow-portal/internal/apperr"
	"github.com/wolfman30/careflow-portal/internal/auth"
	"github.com/wolfman30/careflow-portal/internal/http/respond"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

// Handler exposes the calendar over HTTP. Routes expect the bearer auth
// middleware to have placed an auth.Identity on the request context.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the calendar HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type rescheduleRequest struct {
	Start string `json:"start"`
}

// ListEvents handles GET /api/calendar/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, apperr.NewUnauthorized("Unauthorized"))
		return
	}
	events, err := h.service.Events(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("failed to list calendar events", "user_id", id.UserID, "error", err)
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"events": events})
}

// Reschedule handles PATCH /api/appointments/{id}/schedule.
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, apperr.NewUnauthorized("Unauthorized"))
		return
	}
	appointmentID := chi.URLParam(r, "id")

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.NewInvalidRequest("invalid JSON body"))
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		h.writeError(w, apperr.NewInvalidRequest("start must be an RFC3339 timestamp"))
		return
	}

	if err := h.service.Reschedule(r.Context(), id.UserID, appointmentID, start); err != nil {
		h.logger.Warn("reschedule rejected", "appointment_id", appointmentID, "user_id", id.UserID, "error", err)
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// The calendar API is not bound to the portal functions' 401/403/500 contract,
// so lookups and bad input get their conventional codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		respond.ErrorStatus(w, http.StatusNotFound, err)
	case apperr.KindInvalidRequest:
		respond.ErrorStatus(w, http.StatusBadRequest, err)
	default:
		respond.Error(w, err)
	}
}
