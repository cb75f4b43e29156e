package offline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// Client sends journaled sessions to the ironlog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the ironlog server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ImportResult is the server's response to a session import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// SendSessions POSTs sessions to the server's import endpoint. Retries up to
// 3 times with exponential backoff on transient failures.
func (c *Client) SendSessions(sessions []*models.Session) (*ImportResult, error) {
	data, err := json.Marshal(map[string]any{"sessions": sessions})
	if err != nil {
		return nil, fmt.Errorf("marshaling sessions: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<attempt) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/import/sessions", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("building import request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("sending sessions: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, lastErr // client errors won't heal on retry
			}
			continue
		}

		var result ImportResult
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding import result: %w", err)
		}
		return &result, nil
	}
	return nil, lastErr
}
