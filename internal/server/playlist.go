package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/repositories"
	"github.com/ericfjmnz/encore/internal/scraper"
	"github.com/ericfjmnz/encore/internal/shared"
)

// playlistResponse is the proxy's success payload.
type playlistResponse struct {
	Tracks []models.ScrapedTrack `json:"tracks"`
}

// errorResponse is the proxy's failure payload.
type errorResponse struct {
	Error string `json:"error"`
}

// PlaylistHandler serves GET /wqxr-playlist: it fetches the station's daily
// playlist page for the requested date, scrapes it, and returns JSON.
//
// Implements the Handler interface for registration with a Router.
type PlaylistHandler struct {
	baseURL    string
	httpClient *http.Client
	cache      *repositories.ResponseCache
	logger     *log.Logger
}

// NewPlaylistHandler creates a handler scraping pages under baseURL.
// The cache is optional; when nil, every request refetches the page.
func NewPlaylistHandler(baseURL string, client *http.Client, cache *repositories.ResponseCache, logger *log.Logger) *PlaylistHandler {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistHandler{
		baseURL:    baseURL,
		httpClient: client,
		cache:      cache,
		logger:     logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{"/wqxr-playlist"}
}

// ServeHTTP handles the daily playlist request.
//
// Missing query parameters are a 400; upstream fetch or parse failure is a
// 500. An empty track listing is still a 200 with an empty array.
func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	year := query.Get("year")
	month := query.Get("month")
	day := query.Get("day")

	if year == "" || month == "" || day == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "year, month, and day query parameters are required"})
		return
	}

	tracks, err := h.fetchDay(r, year, month, day)
	if err != nil {
		h.logger.Error("scrape failed", "year", year, "month", month, "day", day, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	if tracks == nil {
		tracks = []models.ScrapedTrack{}
	}
	writeJSON(w, http.StatusOK, playlistResponse{Tracks: tracks})
}

// fetchDay retrieves the page markup (through the cache when present) and scrapes it.
func (h *PlaylistHandler) fetchDay(r *http.Request, year, month, day string) ([]models.ScrapedTrack, error) {
	pageURL := scraper.PageURL(h.baseURL, year, month, day)

	if h.cache != nil {
		if body, ok := h.cache.Get(pageURL); ok {
			h.logger.Debug("cache hit", "url", pageURL)
			return scraper.Scrape(bytes.NewReader(body))
		}
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Join(shared.ErrFetch, err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(shared.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Join(shared.ErrFetch, errors.New(resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(shared.ErrFetch, err)
	}

	if h.cache != nil {
		if err := h.cache.Put(pageURL, body); err != nil {
			h.logger.Warn("failed to cache page", "url", pageURL, "err", err)
		}
	}

	return scraper.Scrape(bytes.NewReader(body))
}

// HealthHandler serves GET /health.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
