package services

import (
	"context"

	"github.com/ericfjmnz/encore/internal/models"
)

// Service defines the narrow interface the curation pipeline needs from the
// remote catalog/collection API. Pagination is exposed page-by-page so the
// pipeline owns its own delays and cancellation checks.
type Service interface {
	// Authenticate performs OAuth authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// PlaylistPage retrieves one page of the current user's playlists.
	PlaylistPage(ctx context.Context, offset, limit int) (*models.PlaylistPage, error)

	// PlaylistTracksPage retrieves one page of a playlist's tracks.
	// Items may contain zero-value entries where the remote returned a null track.
	PlaylistTracksPage(ctx context.Context, playlistID string, offset, limit int) (*models.TrackPage, error)

	// SearchTrack issues one field-scoped search and returns the top candidate.
	// Returns (nil, nil) when the search succeeds but yields no candidates.
	SearchTrack(ctx context.Context, title, performer string) (*models.Track, error)

	// CreatePlaylist creates a new, empty playlist for the current user.
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)

	// AddTracks appends tracks to a playlist in the given order.
	// The remote enforces a hard per-call item ceiling; callers chunk accordingly.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// TopTracks retrieves the user's top tracks for a time range (short_term,
	// medium_term, long_term).
	TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Track, error)

	// TopArtists retrieves the user's top artists for a time range.
	TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error)

	// RecentlyPlayed retrieves the user's recently played tracks.
	RecentlyPlayed(ctx context.Context, limit int) ([]models.Track, error)

	// Recommendations retrieves recommended tracks seeded by artist IDs.
	Recommendations(ctx context.Context, artistIDs []string, limit int) ([]models.Track, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
