package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/tapedeck/tapedeck-go/internal/errors"
	"github.com/tapedeck/tapedeck-go/internal/network"
)

// HTTPClient talks to the archive catalog over its JSON API.
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewHTTPClient creates a catalog client for the given API base URL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	cfg := network.DefaultClientConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  network.NewClient(cfg),
		rateLimiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
	}
}

// GetShow implements Client.
func (c *HTTPClient) GetShow(ctx context.Context, showID string) (*Show, error) {
	var show Show
	if err := c.getJSON(ctx, "/shows/"+url.PathEscape(showID), &show); err != nil {
		return nil, err
	}
	if show.ID == "" {
		show.ID = showID
	}
	return &show, nil
}

// GetRecordings implements Client.
func (c *HTTPClient) GetRecordings(ctx context.Context, showID string) ([]Recording, error) {
	var recs []Recording
	path := "/shows/" + url.PathEscape(showID) + "/recordings"
	if err := c.getJSON(ctx, path, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// BestRecording implements Client: the first soundboard carrying a supported
// format wins, then any recording with a supported format.
func (c *HTTPClient) BestRecording(ctx context.Context, showID string) (*Recording, error) {
	recs, err := c.GetRecordings(ctx, showID)
	if err != nil {
		return nil, err
	}

	var fallback *Recording
	for i := range recs {
		rec := &recs[i]
		if !hasSupportedFormat(rec.Formats) {
			continue
		}
		if strings.EqualFold(rec.Source, "soundboard") {
			return rec, nil
		}
		if fallback == nil {
			fallback = rec
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, apperrors.NewNoRecordingFound(showID)
}

// GetTracks implements Client.
func (c *HTTPClient) GetTracks(ctx context.Context, recordingID string) ([]Track, error) {
	var tracks []Track
	path := "/recordings/" + url.PathEscape(recordingID) + "/tracks"
	if err := c.getJSON(ctx, path, &tracks); err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, apperrors.NewNoTracksFound(recordingID)
	}
	return tracks, nil
}

func hasSupportedFormat(formats []string) bool {
	for _, f := range formats {
		for _, want := range DefaultFormatPriority {
			if f == want {
				return true
			}
		}
	}
	return false
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewNetworkError("catalog request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewNoRecordingFound(strings.TrimPrefix(path, "/"))
	case resp.StatusCode != http.StatusOK:
		return apperrors.NewNetworkError(
			fmt.Sprintf("catalog request failed with status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}
