package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwebster45206/dungeon-engine/internal/handlers"
)

const (
	// PollInterval is how often to check the activity log
	PollInterval = 500 * time.Millisecond
	// ActivityTimeout is max time to wait for the worker to store events
	ActivityTimeout = 30 * time.Second
)

// doJSON sends body as JSON and returns the status and raw response.
func doJSON(ctx context.Context, client *http.Client, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// getJSON decodes a 200 response into out.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	status, data, err := doJSON(ctx, client, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s returned %d: %s", url, status, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return nil
}

// GetActivity lists the stored activity for a player.
func GetActivity(ctx context.Context, client *http.Client, baseURL string, playerID int) (*handlers.ActivityResponse, error) {
	var resp handlers.ActivityResponse
	url := fmt.Sprintf("%s/v1/activity/%d?limit=1000", baseURL, playerID)
	if err := getJSON(ctx, client, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PollForActivity waits until the worker has stored at least minCount
// activity rows for the player.
func PollForActivity(ctx context.Context, client *http.Client, baseURL string, playerID, minCount int) (*handlers.ActivityResponse, error) {
	timeout := time.After(ActivityTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	last := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout:
			return nil, fmt.Errorf("timeout waiting for %d activity rows, have %d (waited %v)", minCount, last, ActivityTimeout)
		case <-ticker.C:
			activity, err := GetActivity(ctx, client, baseURL, playerID)
			if err != nil {
				// Keep polling; the worker may still be starting
				continue
			}
			last = activity.Count
			if activity.Count >= minCount {
				return activity, nil
			}
		}
	}
}
