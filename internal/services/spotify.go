// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Hard per-call ceiling on the append endpoint.
	maxAppendItems = 100
	// Hard ceiling on recommendation seed values per call.
	maxSeedArtists = 5
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	URI    string   `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	URI     string          `json:"uri"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	URI         string               `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyPlaylistItem represents one entry of a playlist's track listing.
// Track is a pointer: the API returns null for removed or local-only entries.
type SpotifyPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistItems represents a paginated response of playlist tracks.
type SpotifyPaginatedPlaylistItems struct {
	Items  []SpotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

type searchTracks struct {
	Items []SpotifyTrack `json:"items"`
}

type searchResponse struct {
	Tracks searchTracks `json:"tracks"`
}

type playHistoryItem struct {
	Track SpotifyTrack `json:"track"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type addTracksRequest struct {
	URIs []string `json:"uris"`
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] with PKCE; no client secret is ever held.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
	userID     string
}

// NewSpotifyService creates a new Spotify service for the given PKCE credentials.
func NewSpotifyService(cfg shared.SpotifyConfig) (*SpotifyService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8888/callback"
	}

	config := &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-private",
			"playlist-modify-public",
			"user-top-read",
			"user-read-recently-played",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

// OAuthConfig exposes the underlying [oauth2.Config] for the loopback callback server.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// AuthURL returns the PKCE authorization URL for user login.
func (s *SpotifyService) AuthURL(state, verifier string) string {
	return s.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// SetToken installs a previously obtained token (e.g., one restored from disk).
func (s *SpotifyService) SetToken(ctx context.Context, token *oauth2.Token) {
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
}

// Authenticate performs OAuth authentication. Expects either an "access_token"
// or an "auth_code" with its "code_verifier" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.SetToken(ctx, &oauth2.Token{AccessToken: accessToken})
		return nil
	}

	authCode, okCode := credentials["auth_code"]
	verifier, okVerifier := credentials["code_verifier"]
	if okCode && okVerifier && authCode != "" && verifier != "" {
		token, err := s.config.Exchange(ctx, authCode, oauth2.VerifierOption(verifier))
		if err != nil {
			return fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
		}
		s.SetToken(ctx, token)
		return nil
	}

	return fmt.Errorf("%w: access_token or auth_code+code_verifier", shared.ErrMissingCredentials)
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// A 401 from any endpoint means the bearer token is no longer usable and is
// surfaced as [shared.ErrReauthRequired]; in-flight tasks treat it as fatal.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := s.baseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: status 401", shared.ErrReauthRequired)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status 429", shared.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: unexpected response shape: %v", shared.ErrParse, err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// currentUserID returns the authenticated user's ID, fetching it once.
func (s *SpotifyService) currentUserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}
	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", err
	}
	if user.ID == "" {
		return "", fmt.Errorf("%w: profile missing id", shared.ErrParse)
	}
	s.userID = user.ID
	return s.userID, nil
}

// PlaylistPage retrieves one page of the current user's playlists.
func (s *SpotifyService) PlaylistPage(ctx context.Context, offset, limit int) (*models.PlaylistPage, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &models.PlaylistPage{Total: response.Total}
	if response.Next != nil {
		page.Next = *response.Next
	}
	for _, sp := range response.Items {
		page.Items = append(page.Items, models.Playlist{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			TrackCount:  sp.Tracks.Total,
			Public:      sp.Public,
		})
	}

	return page, nil
}

// PlaylistTracksPage retrieves one page of a playlist's tracks.
//
// Null or id-less entries are passed through as zero-value tracks so the
// caller can log and skip them; this mirrors what the API actually returns
// for removed and local-only items.
func (s *SpotifyService) PlaylistTracksPage(ctx context.Context, playlistID string, offset, limit int) (*models.TrackPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), limit, offset)

	var response SpotifyPaginatedPlaylistItems
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &models.TrackPage{Total: response.Total}
	if response.Next != nil {
		page.Next = *response.Next
	}
	for _, item := range response.Items {
		if item.Track == nil {
			page.Items = append(page.Items, models.Track{})
			continue
		}
		page.Items = append(page.Items, trackToModel(*item.Track))
	}

	return page, nil
}

// SearchTrack issues one field-scoped search and returns the top candidate.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, performer string) (*models.Track, error) {
	query := fmt.Sprintf("track:%s artist:%s", title, performer)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=1", url.QueryEscape(query))

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, nil
	}

	track := trackToModel(response.Tracks.Items[0])
	return &track, nil
}

// CreatePlaylist creates a new, empty playlist for the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	body := createPlaylistRequest{Name: name, Description: description, Public: false}

	var created SpotifySimplePlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: create response missing id", shared.ErrParse)
	}

	return &models.Playlist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		Public:      created.Public,
	}, nil
}

// AddTracks appends tracks to a playlist in the given order.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidInput)
	}
	if len(trackIDs) > maxAppendItems {
		return fmt.Errorf("%w: maximum %d track IDs per append", shared.ErrInvalidInput, maxAppendItems)
	}

	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = "spotify:track:" + id
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, addTracksRequest{URIs: uris}, nil)
}

// TopTracks retrieves the user's top tracks for a time range.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Track, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	if timeRange == "" {
		timeRange = "medium_term"
	}

	endpoint := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", url.QueryEscape(timeRange), limit)

	var response struct {
		Items []SpotifyTrack `json:"items"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return tracksToModels(response.Items), nil
}

// TopArtists retrieves the user's top artists for a time range.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	if timeRange == "" {
		timeRange = "medium_term"
	}

	endpoint := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", url.QueryEscape(timeRange), limit)

	var response struct {
		Items []SpotifyArtist `json:"items"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(response.Items))
	for _, a := range response.Items {
		artists = append(artists, models.Artist{ID: a.ID, Name: a.Name, Genres: a.Genres})
	}
	return artists, nil
}

// RecentlyPlayed retrieves the user's recently played tracks.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) ([]models.Track, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", limit)

	var response struct {
		Items []playHistoryItem `json:"items"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Items))
	for _, item := range response.Items {
		tracks = append(tracks, trackToModel(item.Track))
	}
	return tracks, nil
}

// Recommendations retrieves recommended tracks seeded by artist IDs (up to 5).
func (s *SpotifyService) Recommendations(ctx context.Context, artistIDs []string, limit int) ([]models.Track, error) {
	if len(artistIDs) == 0 {
		return nil, fmt.Errorf("%w: no seed artists provided", shared.ErrInvalidInput)
	}
	if len(artistIDs) > maxSeedArtists {
		artistIDs = artistIDs[:maxSeedArtists]
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	seeds := strings.Join(artistIDs, ",")
	endpoint := fmt.Sprintf("/recommendations?seed_artists=%s&limit=%d", url.QueryEscape(seeds), limit)

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return tracksToModels(response.Tracks), nil
}

func trackToModel(t SpotifyTrack) models.Track {
	track := models.Track{ID: t.ID, Title: t.Name}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	for _, a := range t.Artists {
		if a.ID != "" {
			track.ArtistIDs = append(track.ArtistIDs, a.ID)
		}
	}
	return track
}

func tracksToModels(in []SpotifyTrack) []models.Track {
	out := make([]models.Track, 0, len(in))
	for _, t := range in {
		out = append(out, trackToModel(t))
	}
	return out
}
