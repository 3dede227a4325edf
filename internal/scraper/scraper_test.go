package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ericfjmnz/encore/internal/shared"
)

const fixturePage = `<!DOCTYPE html>
<html>
<body>
<div class="whats-on">
  <div class="playlist-item">
    <ul class="playlist-item-info">
      <li class="playlist-item__title">  Symphony No. 5 in C minor </li>
      <li class="playlist-item__composer">Ludwig van Beethoven</li>
    </ul>
  </div>
  <div class="playlist-item">
    <ul class="playlist-item-info">
      <li class="playlist-item__title">Clair de Lune</li>
      <li class="playlist-item__composer">Claude Debussy</li>
    </ul>
  </div>
  <div class="playlist-item">
    <ul class="playlist-item-info">
      <li class="playlist-item__title">The Four Seasons: Spring</li>
      <li class="playlist-item__composer">Antonio Vivaldi</li>
    </ul>
  </div>
  <div class="playlist-item">
    <ul class="playlist-item-info">
      <li class="playlist-item__title">Untitled Interlude</li>
      <li class="playlist-item__composer">   </li>
    </ul>
  </div>
</div>
</body>
</html>`

func TestScrape(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantCount int
	}{
		{
			name:      "fixture page drops row missing composer",
			html:      fixturePage,
			wantCount: 3,
		},
		{
			name:      "empty page yields empty sequence",
			html:      "<html><body><p>nothing on air</p></body></html>",
			wantCount: 0,
		},
		{
			name: "row missing title dropped",
			html: `<div class="playlist-item"><ul class="playlist-item-info">
				<li class="playlist-item__title"></li>
				<li class="playlist-item__composer">Bach</li></ul></div>`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks, err := Scrape(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("Scrape() error = %v", err)
			}
			if len(tracks) != tt.wantCount {
				t.Errorf("Scrape() returned %d tracks, want %d", len(tracks), tt.wantCount)
			}
			for _, tr := range tracks {
				if tr.Title == "" || tr.Composer == "" {
					t.Errorf("Scrape() emitted entry with empty field: %+v", tr)
				}
			}
		})
	}
}

func TestScrapeTrimsWhitespace(t *testing.T) {
	tracks, err := Scrape(strings.NewReader(fixturePage))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(tracks) == 0 {
		t.Fatal("expected tracks from fixture page")
	}
	if tracks[0].Title != "Symphony No. 5 in C minor" {
		t.Errorf("title not trimmed: %q", tracks[0].Title)
	}
}

func TestPageURL(t *testing.T) {
	got := PageURL("https://www.wqxr.org/", "2025", "jun", "12")
	want := "https://www.wqxr.org/music/playlists/daily-playlist/2025/jun/12/"
	if got != want {
		t.Errorf("PageURL() = %q, want %q", got, want)
	}
}

func TestFetch(t *testing.T) {
	t.Run("successful fetch scrapes page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(fixturePage))
		}))
		defer server.Close()

		tracks, err := Fetch(context.Background(), server.Client(), server.URL, "2025", "jun", "12")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if len(tracks) != 3 {
			t.Errorf("Fetch() returned %d tracks, want 3", len(tracks))
		}
	})

	t.Run("non-2xx status is a fetch error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := Fetch(context.Background(), server.Client(), server.URL, "2025", "jun", "12")
		if !errors.Is(err, shared.ErrFetch) {
			t.Errorf("Fetch() error = %v, want ErrFetch", err)
		}
	})

	t.Run("unreachable host is a fetch error", func(t *testing.T) {
		_, err := Fetch(context.Background(), http.DefaultClient, "http://127.0.0.1:1", "2025", "jun", "12")
		if !errors.Is(err, shared.ErrFetch) {
			t.Errorf("Fetch() error = %v, want ErrFetch", err)
		}
	})
}
