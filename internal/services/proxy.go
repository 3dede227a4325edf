// Client for the scrape proxy's single JSON endpoint
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/shared"
)

// ProxyClient makes raw HTTP requests to the scrape proxy.
type ProxyClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProxyClient creates a new client for the scrape proxy.
func NewProxyClient(baseURL string, client *http.Client) *ProxyClient {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &ProxyClient{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// ProxyResponse represents a raw proxy response with status and body.
type ProxyResponse struct {
	StatusCode int
	Body       []byte
}

// Get performs a GET request to the specified path and returns the raw response.
func (p *ProxyClient) Get(ctx context.Context, path string) (*ProxyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &ProxyResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// DailyPlaylist fetches the scraped track listing for a date.
//
// Month is the station's lowercase three-letter form, e.g. "jun".
func (p *ProxyClient) DailyPlaylist(ctx context.Context, year, month, day string) ([]models.ScrapedTrack, error) {
	query := url.Values{}
	query.Set("year", year)
	query.Set("month", month)
	query.Set("day", day)

	resp, err := p.Get(ctx, "/wqxr-playlist?"+query.Encode())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(resp.Body, &errBody); err == nil && errBody.Error != "" {
			return nil, fmt.Errorf("%w: proxy status %d: %s", shared.ErrFetch, resp.StatusCode, errBody.Error)
		}
		return nil, fmt.Errorf("%w: proxy status %d", shared.ErrFetch, resp.StatusCode)
	}

	var payload struct {
		Tracks []models.ScrapedTrack `json:"tracks"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: unexpected proxy response shape: %v", shared.ErrParse, err)
	}

	return payload.Tracks, nil
}

// Health checks the proxy's /health endpoint.
func (p *ProxyClient) Health(ctx context.Context) error {
	resp, err := p.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}
