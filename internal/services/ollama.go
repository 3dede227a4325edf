// Client for a local Ollama instance used by the suggest task
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/shared"
)

const suggestSystemPrompt = "You are a music curator. Given a listener's request, reply with a plain list " +
	"of real, existing tracks, one per line, in the exact form: Title - Artist. " +
	"No numbering, no commentary, no markdown."

// OllamaClient asks a local Ollama instance for track suggestions.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// NewOllamaClient creates a client for the given base URL and model.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:8b"
	}
	return &OllamaClient{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SuggestTracks asks the model for count track suggestions matching the prompt.
//
// Lines that don't parse as "Title - Artist" are dropped; an entirely
// unparseable reply is a [shared.ErrParse].
func (c *OllamaClient) SuggestTracks(ctx context.Context, prompt string, count int) ([]models.MatchQuery, error) {
	if count <= 0 {
		count = 20
	}

	payload := ollamaChatRequest{
		Model:  c.model,
		Stream: false,
		Messages: []ollamaMessage{
			{Role: "system", Content: suggestSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Suggest %d tracks: %s", count, prompt)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", shared.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: ollama: status %d", shared.ErrFetch, resp.StatusCode)
	}

	var parsed ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: ollama response: %v", shared.ErrParse, err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("ollama: %s", parsed.Error)
	}

	queries := ParseSuggestions(parsed.Message.Content)
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no usable suggestions in model reply", shared.ErrParse)
	}
	if len(queries) > count {
		queries = queries[:count]
	}

	return queries, nil
}

// ParseSuggestions extracts "Title - Artist" pairs from a model reply,
// skipping lines that don't fit the form.
func ParseSuggestions(reply string) []models.MatchQuery {
	var queries []models.MatchQuery
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789. ")
		if line == "" {
			continue
		}

		title, artist, found := strings.Cut(line, " - ")
		if !found {
			continue
		}
		title = strings.TrimSpace(strings.Trim(title, `"`))
		artist = strings.TrimSpace(artist)
		if title == "" || artist == "" {
			continue
		}
		queries = append(queries, models.MatchQuery{Title: title, Performer: artist})
	}
	return queries
}
