package tasks

import (
	"context"
	"fmt"

	"github.com/ericfjmnz/encore/internal/models"
)

// mockService implements services.Service with overridable behavior per test.
type mockService struct {
	authenticateFunc       func(ctx context.Context, credentials map[string]string) error
	playlistPageFunc       func(ctx context.Context, offset, limit int) (*models.PlaylistPage, error)
	playlistTracksPageFunc func(ctx context.Context, playlistID string, offset, limit int) (*models.TrackPage, error)
	searchTrackFunc        func(ctx context.Context, title, performer string) (*models.Track, error)
	createPlaylistFunc     func(ctx context.Context, name, description string) (*models.Playlist, error)
	addTracksFunc          func(ctx context.Context, playlistID string, trackIDs []string) error
	topTracksFunc          func(ctx context.Context, timeRange string, limit int) ([]models.Track, error)
	topArtistsFunc         func(ctx context.Context, timeRange string, limit int) ([]models.Artist, error)
	recentlyPlayedFunc     func(ctx context.Context, limit int) ([]models.Track, error)
	recommendationsFunc    func(ctx context.Context, artistIDs []string, limit int) ([]models.Track, error)
}

func (m *mockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, credentials)
	}
	return nil
}

func (m *mockService) PlaylistPage(ctx context.Context, offset, limit int) (*models.PlaylistPage, error) {
	if m.playlistPageFunc != nil {
		return m.playlistPageFunc(ctx, offset, limit)
	}
	return &models.PlaylistPage{}, nil
}

func (m *mockService) PlaylistTracksPage(ctx context.Context, playlistID string, offset, limit int) (*models.TrackPage, error) {
	if m.playlistTracksPageFunc != nil {
		return m.playlistTracksPageFunc(ctx, playlistID, offset, limit)
	}
	return &models.TrackPage{}, nil
}

func (m *mockService) SearchTrack(ctx context.Context, title, performer string) (*models.Track, error) {
	if m.searchTrackFunc != nil {
		return m.searchTrackFunc(ctx, title, performer)
	}
	return nil, nil
}

func (m *mockService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if m.createPlaylistFunc != nil {
		return m.createPlaylistFunc(ctx, name, description)
	}
	return &models.Playlist{ID: fakeID(1), Name: name}, nil
}

func (m *mockService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.addTracksFunc != nil {
		return m.addTracksFunc(ctx, playlistID, trackIDs)
	}
	return nil
}

func (m *mockService) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Track, error) {
	if m.topTracksFunc != nil {
		return m.topTracksFunc(ctx, timeRange, limit)
	}
	return nil, nil
}

func (m *mockService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error) {
	if m.topArtistsFunc != nil {
		return m.topArtistsFunc(ctx, timeRange, limit)
	}
	return nil, nil
}

func (m *mockService) RecentlyPlayed(ctx context.Context, limit int) ([]models.Track, error) {
	if m.recentlyPlayedFunc != nil {
		return m.recentlyPlayedFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockService) Recommendations(ctx context.Context, artistIDs []string, limit int) ([]models.Track, error) {
	if m.recommendationsFunc != nil {
		return m.recommendationsFunc(ctx, artistIDs, limit)
	}
	return nil, nil
}

func (m *mockService) Name() string {
	return "Mock"
}

// fakeID produces a well-formed 22-character catalog identifier.
func fakeID(n int) string {
	return fmt.Sprintf("%022d", n)
}

// fakeIDs produces count distinct well-formed identifiers.
func fakeIDs(count int) []string {
	ids := make([]string, count)
	for i := range ids {
		ids[i] = fakeID(i)
	}
	return ids
}
