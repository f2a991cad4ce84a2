// Package suggest talks to the external filter-suggestion service. The
// service looks at a rendered preview and proposes partial filter settings;
// it is best-effort and every failure degrades to an empty suggestion.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/mkessel/retropix/internal/domain"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// Client is an HTTP client for the suggestion service.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewClient creates a suggestion client with default settings.
func NewClient(endpoint string) *Client {
	return &Client{
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Fetch posts a PNG-encoded preview and returns the proposed settings.
// On any failure the suggestion is empty and the error is advisory only:
// callers may show it as a notice but must not treat it as fatal.
func (c *Client) Fetch(ctx context.Context, preview *domain.Frame) (domain.Suggestion, error) {
	var empty domain.Suggestion
	if c.Endpoint == "" {
		return empty, fmt.Errorf("no suggestion endpoint configured")
	}

	body := new(bytes.Buffer)
	if err := png.Encode(body, preview.ToImage()); err != nil {
		return empty, fmt.Errorf("encode preview: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint, body)
	if err != nil {
		return empty, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("suggestion request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("read suggestion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return empty, fmt.Errorf("suggestion service status %d: %s", resp.StatusCode, string(data))
	}

	var s domain.Suggestion
	if err := json.Unmarshal(data, &s); err != nil {
		return empty, fmt.Errorf("parse suggestion: %w", err)
	}
	return s, nil
}
