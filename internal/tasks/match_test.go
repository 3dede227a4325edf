package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/shared"
)

func TestMatchAll(t *testing.T) {
	catalog := map[string]string{
		"Symphony No. 5": fakeID(1),
		"Clair de Lune":  fakeID(2),
	}

	svc := &mockService{
		searchTrackFunc: func(ctx context.Context, title, performer string) (*models.Track, error) {
			id, ok := catalog[title]
			if !ok {
				return nil, nil
			}
			return &models.Track{ID: id, Title: title}, nil
		},
	}

	m := NewMatcher(svc, nil, nil)

	queries := []models.MatchQuery{
		{Title: "Symphony No. 5", Performer: "Beethoven"},
		{Title: "Unfindable Piece", Performer: "Nobody"},
		{Title: "Clair de Lune", Performer: "Debussy"},
	}

	results, err := m.MatchAll(context.Background(), queries, nil)
	if err != nil {
		t.Fatalf("MatchAll() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3 (one per query, match or not)", len(results))
	}
	if results[0].TrackID != fakeID(1) {
		t.Errorf("results[0].TrackID = %q, want %q", results[0].TrackID, fakeID(1))
	}
	if results[1].TrackID != "" {
		t.Errorf("results[1].TrackID = %q, want empty for no candidate", results[1].TrackID)
	}
	if results[2].TrackID != fakeID(2) {
		t.Errorf("results[2].TrackID = %q, want %q", results[2].TrackID, fakeID(2))
	}

	ids := MatchedIDs(results)
	if len(ids) != 2 || ids[0] != fakeID(1) || ids[1] != fakeID(2) {
		t.Errorf("MatchedIDs() = %v, want [%s %s]", ids, fakeID(1), fakeID(2))
	}
}

func TestMatchAllSearchFailureIsNoMatch(t *testing.T) {
	var calls int
	svc := &mockService{
		searchTrackFunc: func(ctx context.Context, title, performer string) (*models.Track, error) {
			calls++
			if calls == 1 {
				return nil, fmt.Errorf("%w: transient", shared.ErrAPIRequest)
			}
			return &models.Track{ID: fakeID(calls)}, nil
		},
	}

	m := NewMatcher(svc, nil, nil)

	queries := []models.MatchQuery{
		{Title: "A", Performer: "X"},
		{Title: "B", Performer: "Y"},
	}

	results, err := m.MatchAll(context.Background(), queries, nil)
	if err != nil {
		t.Fatalf("MatchAll() error = %v, want nil (search failures are per-item)", err)
	}
	if results[0].TrackID != "" {
		t.Errorf("failed search should record no match, got %q", results[0].TrackID)
	}
	if results[1].TrackID == "" {
		t.Error("second query should still have been attempted and matched")
	}
}

func TestMatchAllReauthAborts(t *testing.T) {
	var calls int
	svc := &mockService{
		searchTrackFunc: func(ctx context.Context, title, performer string) (*models.Track, error) {
			calls++
			if calls == 2 {
				return nil, shared.ErrReauthRequired
			}
			return &models.Track{ID: fakeID(calls)}, nil
		},
	}

	m := NewMatcher(svc, nil, nil)

	queries := []models.MatchQuery{
		{Title: "A"}, {Title: "B"}, {Title: "C"},
	}

	results, err := m.MatchAll(context.Background(), queries, nil)
	if !errors.Is(err, shared.ErrReauthRequired) {
		t.Fatalf("MatchAll() error = %v, want ErrReauthRequired", err)
	}
	if len(results) != 1 {
		t.Errorf("partial results = %d, want 1 (accumulated before the abort)", len(results))
	}
	if calls != 2 {
		t.Errorf("search calls = %d, want 2 (no call after the fatal error)", calls)
	}
}

func TestMatchAllCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	svc := &mockService{
		searchTrackFunc: func(ctx context.Context, title, performer string) (*models.Track, error) {
			calls++
			cancel()
			return &models.Track{ID: fakeID(calls)}, nil
		},
	}

	m := NewMatcher(svc, nil, nil)

	queries := []models.MatchQuery{{Title: "A"}, {Title: "B"}}

	results, err := m.MatchAll(ctx, queries, nil)
	if !errors.Is(err, shared.ErrCancelled) {
		t.Fatalf("MatchAll() error = %v, want ErrCancelled", err)
	}
	if calls != 1 {
		t.Errorf("search calls = %d, want 1", calls)
	}
	if len(results) != 1 {
		t.Errorf("partial results = %d, want 1", len(results))
	}
}

func TestMatchAllProgress(t *testing.T) {
	svc := &mockService{}
	m := NewMatcher(svc, nil, nil)

	queries := []models.MatchQuery{{Title: "A"}, {Title: "B"}, {Title: "C"}}

	var seen []int
	_, err := m.MatchAll(context.Background(), queries, func(done, total int, res models.MatchResult) {
		seen = append(seen, done)
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
	})
	if err != nil {
		t.Fatalf("MatchAll() error = %v", err)
	}
	if len(seen) != 3 || seen[2] != 3 {
		t.Errorf("progress callbacks = %v, want [1 2 3]", seen)
	}
}
