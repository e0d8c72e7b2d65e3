package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerSendsNotification(t *testing.T) {
	sender := &recordingSender{}
	d, _ := newTestDispatcher(sender)

	body := `{"type":"refill_reminder","user_id":"user-1","data":{"medication_name":"Lisinopril","pills_remaining":4}}`
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/send-notifications", strings.NewReader(body))
	rec := httptest.NewRecorder()
	NewHandler(d, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool    `json:"success"`
		Message string  `json:"message"`
		Data    Receipt `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Notification sent", resp.Message)
	assert.Equal(t, "msg-1", resp.Data.ID)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].HTML, "<li><strong>Pills Remaining:</strong> 4</li>")
}

func TestHandlerFailuresAre500(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `{`, "Invalid request body"},
		{"invalid type", `{"type":"nope","user_id":"user-1","data":{}}`, "Invalid notification type"},
		{"missing email", `{"type":"medication_alert","user_id":"noemail","data":{}}`, "User email not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			d, _ := newTestDispatcher(sender)
			rec := httptest.NewRecorder()
			NewHandler(d, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/send-notifications", strings.NewReader(tt.body)))

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp["error"])
			assert.Empty(t, sender.sent)
		})
	}
}
