// Package respond writes JSON bodies and apperr-classified errors.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/careflow-portal/internal/apperr"
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes {"error": msg} using the status apperr assigns to err.
func Error(w http.ResponseWriter, err error) {
	ErrorStatus(w, apperr.Status(err), err)
}

// ErrorStatus writes {"error": msg} with an explicit status.
func ErrorStatus(w http.ResponseWriter, status int, err error) {
	JSON(w, status, map[string]string{"error": apperr.PublicMessage(err)})
}
