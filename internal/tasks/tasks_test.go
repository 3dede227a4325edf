package tasks

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/shared"
)

type stubRadio struct {
	tracks []models.ScrapedTrack
	err    error
}

func (s *stubRadio) DailyPlaylist(ctx context.Context, year, month, day string) ([]models.ScrapedTrack, error) {
	return s.tracks, s.err
}

type stubSuggester struct {
	queries []models.MatchQuery
	err     error
}

func (s *stubSuggester) SuggestTracks(ctx context.Context, prompt string, count int) ([]models.MatchQuery, error) {
	return s.queries, s.err
}

func newTestEngine(svc *mockService, radio RadioSource, suggester Suggester) *CurationEngine {
	return NewCurationEngine(svc, radio, suggester, shared.PipelineConfig{
		PlaylistPageSize: 50,
		TrackPageSize:    100,
		ChunkSize:        100,
		CollectionLimit:  10000,
	}, nil)
}

func TestRadioTask(t *testing.T) {
	radio := &stubRadio{tracks: []models.ScrapedTrack{
		{Title: "Symphony No. 5", Composer: "Beethoven"},
		{Title: "Unknown Piece", Composer: "Nobody"},
		{Title: "Clair de Lune", Composer: "Debussy"},
	}}

	var searched []string
	var appended []string
	svc := &mockService{
		searchTrackFunc: func(ctx context.Context, title, performer string) (*models.Track, error) {
			searched = append(searched, title+"/"+performer)
			if title == "Unknown Piece" {
				return nil, nil
			}
			return &models.Track{ID: fakeID(len(searched))}, nil
		},
		addTracksFunc: func(ctx context.Context, playlistID string, trackIDs []string) error {
			appended = append(appended, trackIDs...)
			return nil
		},
	}

	engine := newTestEngine(svc, radio, nil)
	task := engine.Radio("2025", "jun", "15", "")

	var updates []ProgressUpdate
	result, err := task(context.Background(), func(u ProgressUpdate) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("radio task error = %v", err)
	}

	if result.Requested != 3 || result.Matched != 2 {
		t.Errorf("result = %d/%d matched/requested, want 2/3", result.Matched, result.Requested)
	}
	if len(result.PlaylistIDs) != 1 {
		t.Errorf("playlists created = %d, want 1", len(result.PlaylistIDs))
	}
	if len(appended) != 2 {
		t.Errorf("tracks appended = %d, want 2", len(appended))
	}
	if searched[0] != "Symphony No. 5/Beethoven" {
		t.Errorf("first search = %q, want title/composer pair", searched[0])
	}

	// Progress must be monotone across the stage boundaries.
	last := -1
	for _, u := range updates {
		if u.Percent < last {
			t.Errorf("progress regressed from %d to %d at phase %s", last, u.Percent, u.Phase)
		}
		last = u.Percent
	}
	if updates[len(updates)-1].Phase != PhaseDone {
		t.Errorf("final phase = %s, want done", updates[len(updates)-1].Phase)
	}
}

func TestRadioTaskEmptyScrape(t *testing.T) {
	engine := newTestEngine(&mockService{}, &stubRadio{}, nil)
	task := engine.Radio("2025", "jun", "15", "")

	_, err := task(context.Background(), func(ProgressUpdate) {})
	if !errors.Is(err, shared.ErrNoData) {
		t.Errorf("radio task error = %v, want ErrNoData for an empty scrape", err)
	}
}

func TestTopTracksTask(t *testing.T) {
	svc := &mockService{
		topTracksFunc: func(ctx context.Context, timeRange string, limit int) ([]models.Track, error) {
			if timeRange != "short_term" {
				t.Errorf("timeRange = %q, want short_term", timeRange)
			}
			tracks := make([]models.Track, 30)
			for i := range tracks {
				tracks[i] = models.Track{ID: fakeID(i)}
			}
			return tracks, nil
		},
	}

	engine := newTestEngine(svc, nil, nil)
	task := engine.TopTracks("short_term", 30)

	result, err := task(context.Background(), func(ProgressUpdate) {})
	if err != nil {
		t.Fatalf("toptracks task error = %v", err)
	}
	if result.Matched != 30 {
		t.Errorf("matched = %d, want 30", result.Matched)
	}
}

func TestDedupTaskSortsDeterministically(t *testing.T) {
	svc := &mockService{
		playlistPageFunc: pagedPlaylists([]models.Playlist{{ID: "pl-a"}, {ID: "pl-b"}}),
		playlistTracksPageFunc: func(ctx context.Context, playlistID string, offset, limit int) (*models.TrackPage, error) {
			if playlistID == "pl-a" {
				return &models.TrackPage{Items: []models.Track{{ID: fakeID(3)}, {ID: fakeID(1)}}}, nil
			}
			return &models.TrackPage{Items: []models.Track{{ID: fakeID(2)}, {ID: fakeID(1)}}}, nil
		},
	}

	var appended []string
	svc.addTracksFunc = func(ctx context.Context, playlistID string, trackIDs []string) error {
		appended = append(appended, trackIDs...)
		return nil
	}

	engine := newTestEngine(svc, nil, nil)
	task := engine.Dedup("")

	result, err := task(context.Background(), func(ProgressUpdate) {})
	if err != nil {
		t.Fatalf("dedup task error = %v", err)
	}
	if result.Matched != 3 {
		t.Errorf("unique tracks = %d, want 3", result.Matched)
	}
	if !sort.StringsAreSorted(appended) {
		t.Errorf("dedup output not sorted: %v", appended)
	}
}

func TestFusionTaskSeeds(t *testing.T) {
	artistIDs := fakeIDs(20)[10:] // ten artists
	svc := &mockService{
		playlistPageFunc: pagedPlaylists([]models.Playlist{{ID: "pl-a"}}),
		playlistTracksPageFunc: func(ctx context.Context, playlistID string, offset, limit int) (*models.TrackPage, error) {
			return &models.TrackPage{Items: []models.Track{
				{ID: fakeID(1), ArtistIDs: artistIDs},
			}}, nil
		},
		recommendationsFunc: func(ctx context.Context, seeds []string, limit int) ([]models.Track, error) {
			if len(seeds) != maxFusionSeeds {
				t.Errorf("seeds = %d, want %d", len(seeds), maxFusionSeeds)
			}
			if !sort.StringsAreSorted(seeds) {
				t.Errorf("seeds not drawn from the sorted set: %v", seeds)
			}
			return []models.Track{{ID: fakeID(42)}}, nil
		},
	}

	engine := newTestEngine(svc, nil, nil)
	task := engine.Fusion("", 50)

	result, err := task(context.Background(), func(ProgressUpdate) {})
	if err != nil {
		t.Fatalf("fusion task error = %v", err)
	}
	if len(result.PlaylistIDs) != 1 {
		t.Errorf("playlists created = %d, want 1", len(result.PlaylistIDs))
	}
}

func TestFusionSeedsSelection(t *testing.T) {
	set := make(map[string]struct{})
	for _, id := range fakeIDs(3) {
		set[id] = struct{}{}
	}

	seeds := fusionSeeds(set, 5)
	if len(seeds) != 3 {
		t.Errorf("fewer artists than the cap should all be used, got %d", len(seeds))
	}

	set = make(map[string]struct{})
	for _, id := range fakeIDs(100) {
		set[id] = struct{}{}
	}

	seeds = fusionSeeds(set, 5)
	if len(seeds) != 5 {
		t.Fatalf("seeds = %d, want 5", len(seeds))
	}
	again := fusionSeeds(set, 5)
	for i := range seeds {
		if seeds[i] != again[i] {
			t.Fatal("seed selection is not deterministic")
		}
	}
}

func TestSuggestTask(t *testing.T) {
	suggester := &stubSuggester{queries: []models.MatchQuery{
		{Title: "So What", Performer: "Miles Davis"},
		{Title: "Naima", Performer: "John Coltrane"},
	}}

	svc := &mockService{
		searchTrackFunc: func(ctx context.Context, title, performer string) (*models.Track, error) {
			return &models.Track{ID: fakeID(len(title))}, nil
		},
		createPlaylistFunc: func(ctx context.Context, name, description string) (*models.Playlist, error) {
			if !strings.Contains(name, "late night") {
				t.Errorf("default name = %q, want the prompt embedded", name)
			}
			return &models.Playlist{ID: fakeID(1), Name: name}, nil
		},
	}

	engine := newTestEngine(svc, nil, suggester)
	task := engine.Suggest("late night jazz", "", 2)

	result, err := task(context.Background(), func(ProgressUpdate) {})
	if err != nil {
		t.Fatalf("suggest task error = %v", err)
	}
	if result.Matched != 2 || result.Requested != 2 {
		t.Errorf("result = %d/%d, want 2/2", result.Matched, result.Requested)
	}
}

func TestStagePercent(t *testing.T) {
	s := stage{10, 85}

	tests := []struct {
		step, total, want int
	}{
		{0, 10, 10},
		{5, 10, 47},
		{10, 10, 85},
		{15, 10, 85}, // clamped
		{0, 0, 10},   // empty stage stays at its floor
	}

	for _, tt := range tests {
		if got := s.percent(tt.step, tt.total); got != tt.want {
			t.Errorf("stage{10,85}.percent(%d, %d) = %d, want %d", tt.step, tt.total, got, tt.want)
		}
	}
}
