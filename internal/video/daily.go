package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/careflow-portal/pkg/logging"
)

const (
	defaultBaseURL   = "https://api.daily.co/v1"
	defaultUserAgent = "careflow-portal/1.0"
)

// DailyConfig controls how the Daily REST client behaves.
type DailyConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// DailyClient creates rooms through the Daily REST API.
type DailyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// RoomProperties are the feature flags sent with a room request.
type RoomProperties struct {
	Exp               int64 `json:"exp"`
	EnableChat        bool  `json:"enable_chat"`
	EnableScreenshare bool  `json:"enable_screenshare"`
	EnableKnocking    bool  `json:"enable_knocking"`
	StartVideoOff     bool  `json:"start_video_off"`
	StartAudioOff     bool  `json:"start_audio_off"`
}

// CreateRoomRequest is the body of POST /rooms.
type CreateRoomRequest struct {
	Name       string         `json:"name"`
	Privacy    string         `json:"privacy"`
	Properties RoomProperties `json:"properties"`
}

// RoomResponse is the room descriptor Daily returns.
type RoomResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Privacy   string `json:"privacy"`
	CreatedAt string `json:"created_at"`
}

// ProviderError is a non-2xx answer from the video provider. Body is the raw
// response and is meant for logs only.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("video: provider returned status %d", e.StatusCode)
}

// NewDailyClient returns a client with defaults applied. An empty APIKey is
// allowed; callers check configuration before creating rooms.
func NewDailyClient(cfg DailyConfig) *DailyClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &DailyClient{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// CreateRoom provisions a room. Exactly one request is made; there is no retry.
func (c *DailyClient) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("video: marshal room request: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/rooms", body)
	if err != nil {
		return nil, err
	}
	var room RoomResponse
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("video: decode room response: %w", err)
	}
	return &room, nil
}

func (c *DailyClient) invoke(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("video: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", defaultUserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("video: http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("video: read response: %w", err)
	}
	c.logger.Debug("video provider responded", "method", method, "path", path, "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
