package notify

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wolfman30/careflow-portal/internal/apperr"
	"github.com/wolfman30/careflow-portal/internal/http/respond"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

type dispatcher interface {
	Dispatch(ctx context.Context, req Request) (*Receipt, error)
}

// Handler serves POST /functions/v1/send-notifications. Every failure is a
// 500 with {"error": msg}.
type Handler struct {
	dispatcher dispatcher
	logger     *logging.Logger
}

func NewHandler(d dispatcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{dispatcher: d, logger: logger}
}

type sendResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *Receipt `json:"data"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid notification body", "error", err)
		respond.ErrorStatus(w, http.StatusInternalServerError, apperr.NewInvalidRequest("Invalid request body"))
		return
	}

	receipt, err := h.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		respond.ErrorStatus(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, sendResponse{Success: true, Message: "Notification sent", Data: receipt})
}
