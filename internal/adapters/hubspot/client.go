// Package hubspot is the HubSpot REST adapter: form submissions, form
// definitions and CRM contacts/deals.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"forumregistrations/internal/domain"
)

const (
	providerName   = "hubspot"
	defaultBaseURL = "https://api.hubapi.com"

	// Submission pagination limits.
	pageSize  = 50
	maxPages  = 20
	pageDelay = 100 * time.Millisecond
)

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	// PageDelay overrides the pause between submission pages; zero uses the default.
	PageDelay time.Duration
}

// Client calls the HubSpot API with bearer authentication.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	pageDelay time.Duration
}

// NewClient returns a Client. A nil httpClient uses a client with a 30s timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	delay := cfg.PageDelay
	if delay <= 0 {
		delay = pageDelay
	}
	return &Client{baseURL: baseURL, apiKey: cfg.APIKey, http: httpClient, pageDelay: delay}
}

// newPager paces sequential page requests.
func (c *Client) newPager() *rate.Limiter {
	return rate.NewLimiter(rate.Every(c.pageDelay), 1)
}

func (c *Client) key(creds domain.ProviderCredentials) string {
	if creds.APIKey != "" {
		return creds.APIKey
	}
	return c.apiKey
}

// do sends a JSON request and decodes a 2xx JSON response into out (if non-nil).
// Non-2xx responses become *domain.ProviderError carrying the response body.
func (c *Client) do(ctx context.Context, op, method, path, apiKey string, body, out any) error {
	if apiKey == "" {
		return &domain.ProviderError{Provider: providerName, Op: op, Message: "api key not configured"}
	}
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.ProviderError{Provider: providerName, Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.ProviderError{
			Provider:   providerName,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
