package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/formaplus/elearning-backend/internal/platform/ctxutil"
	"github.com/formaplus/elearning-backend/internal/platform/envutil"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
)

// Client fetches video durations from the YouTube Data API. Lookups are
// bounded by the client timeout and callers degrade to "duration unknown"
// on any failure.
type Client interface {
	VideoDuration(ctx context.Context, videoID string) (string, error)
}

type client struct {
	log     *logger.Logger
	http    *http.Client
	apiKey  string
	baseURL string
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := envutil.GetEnv("YOUTUBE_API_KEY", "", log)
	if apiKey == "" {
		return nil, fmt.Errorf("env var YOUTUBE_API_KEY is empty")
	}
	return &client{
		log:     log.With("client", "YouTubeClient"),
		http:    &http.Client{Timeout: 5 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://www.googleapis.com/youtube/v3/videos",
	}, nil
}

// NewClientWithBase is used by tests to point the client at a fake server.
func NewClientWithBase(log *logger.Logger, apiKey, baseURL string) Client {
	return &client{
		log:     log.With("client", "YouTubeClient"),
		http:    &http.Client{Timeout: 5 * time.Second},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

type videosResponse struct {
	Items []struct {
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// VideoDuration returns the raw ISO-8601 duration string (PT#H#M#S) for a
// video id.
func (c *client) VideoDuration(ctx context.Context, videoID string) (string, error) {
	ctx = ctxutil.Default(ctx)

	q := url.Values{}
	q.Set("id", videoID)
	q.Set("part", "contentDetails")
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("youtube lookup %s: %w", videoID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube lookup %s: status %d", videoID, resp.StatusCode)
	}

	var payload videosResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("youtube lookup %s: decode: %w", videoID, err)
	}
	if len(payload.Items) == 0 {
		return "", fmt.Errorf("youtube lookup %s: no items", videoID)
	}
	return payload.Items[0].ContentDetails.Duration, nil
}
