package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/careflow-portal/internal/apperr"
)

func TestErrorUsesKindStatusAndSafeMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unauthorized", apperr.NewUnauthorized("Unauthorized"), http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", apperr.NewForbidden("Forbidden"), http.StatusForbidden, "Forbidden"},
		{"not found", apperr.NewNotFound("User email not found"), http.StatusInternalServerError, "User email not found"},
		{"raw", errors.New("pq: password authentication failed"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tt.err)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("content type = %q", ct)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tt.message {
				t.Fatalf("error = %q, want %q", body["error"], tt.message)
			}
		})
	}
}

func TestErrorStatusOverridesCode(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorStatus(rec, http.StatusTooManyRequests, apperr.New(apperr.KindInvalidRequest, "Too many requests"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
}
