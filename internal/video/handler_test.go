package video

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerCreatesRoom(t *testing.T) {
	prov := &stubProvider{}
	svc, _ := newTestService(prov, "daily-key")
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/create-video-room", strings.NewReader(`{"appointmentId":"appt-1"}`))
	req.Header.Set("Authorization", "Bearer token-a")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var room Room
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	assert.Contains(t, room.URL, "appt-1")
	assert.True(t, strings.HasPrefix(room.Name, "careflow-appt-1-"))
}

func TestHandlerErrorStatuses(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		auth    string
		body    string
		status  int
		message string
	}{
		{"missing auth", "daily-key", "", `{"appointmentId":"appt-1"}`, http.StatusUnauthorized, "Unauthorized"},
		{"bad body without auth", "daily-key", "", `{`, http.StatusUnauthorized, "Unauthorized"},
		{"not owner", "daily-key", "Bearer token-b", `{"appointmentId":"appt-1"}`, http.StatusForbidden, "Forbidden"},
		{"missing key", "", "Bearer token-a", `{"appointmentId":"appt-1"}`, http.StatusInternalServerError, "Video service not configured"},
		{"bad body", "daily-key", "Bearer token-a", `{`, http.StatusInternalServerError, "Appointment ID is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov := &stubProvider{}
			svc, _ := newTestService(prov, tt.apiKey)
			req := httptest.NewRequest(http.MethodPost, "/functions/v1/create-video-room", strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			NewHandler(svc, nil).ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["error"])
			assert.NotContains(t, body, "url")
			assert.Zero(t, prov.calls)
		})
	}
}
