package video

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wolfman30/careflow-portal/internal/auth"
	"github.com/wolfman30/careflow-portal/internal/http/respond"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

type roomCreator interface {
	CreateRoom(ctx context.Context, authToken, appointmentID string) (*Room, error)
}

// Handler serves POST /functions/v1/create-video-room.
type Handler struct {
	rooms  roomCreator
	logger *logging.Logger
}

func NewHandler(rooms roomCreator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{rooms: rooms, logger: logger}
}

type createRoomRequest struct {
	AppointmentID string `json:"appointmentId"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// An unreadable body still goes through authentication first; the
	// service then rejects the empty appointment id.
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("create room body not decoded", "error", err)
	}

	room, err := h.rooms.CreateRoom(r.Context(), auth.BearerToken(r.Header.Get("Authorization")), req.AppointmentID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, room)
}
