package models

import (
	"fmt"
	"math"
)

// ScrapedTrack is one title/composer pair extracted from a daily playlist page.
type ScrapedTrack struct {
	Title    string `json:"title"`
	Composer string `json:"composer"`
}

// Playlist represents a remote playlist (a named, ordered collection of tracks).
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// Track represents a track in the remote catalog.
type Track struct {
	ID        string
	Title     string
	Artist    string
	ArtistIDs []string
}

// Artist represents an artist in the remote catalog.
type Artist struct {
	ID     string
	Name   string
	Genres []string
}

// PlaylistPage is one page of a paginated playlist listing.
// Next is the opaque continuation value; empty means the listing is exhausted.
type PlaylistPage struct {
	Items []Playlist
	Total int
	Next  string
}

// TrackPage is one page of a playlist's tracks. Items may contain zero-value
// entries where the remote returned a null or malformed track; callers are
// expected to skip those rather than abort.
type TrackPage struct {
	Items []Track
	Total int
	Next  string
}

// LibrarySnapshot is the deduplicated result of walking an entire library.
type LibrarySnapshot struct {
	TrackIDs  map[string]struct{}
	ArtistIDs map[string]struct{}
	Playlists int
}

// NewLibrarySnapshot returns an empty snapshot ready to accumulate into.
func NewLibrarySnapshot() *LibrarySnapshot {
	return &LibrarySnapshot{
		TrackIDs:  make(map[string]struct{}),
		ArtistIDs: make(map[string]struct{}),
	}
}

// Add records a track and its artists, deduplicating by identifier.
func (s *LibrarySnapshot) Add(t Track) {
	s.TrackIDs[t.ID] = struct{}{}
	for _, id := range t.ArtistIDs {
		if id != "" {
			s.ArtistIDs[id] = struct{}{}
		}
	}
}

// MatchQuery is a free-text title/performer pair to reconcile against the catalog.
type MatchQuery struct {
	Title     string
	Performer string
}

// MatchResult pairs a query with the catalog track it resolved to.
// TrackID is empty when no acceptable candidate was found.
type MatchResult struct {
	Query   MatchQuery
	TrackID string
}

// BatchJob describes a bulk playlist write.
//
// Items exceeding CollectionLimit are split across multiple playlists named
// with a " Part N" suffix; each playlist is populated by append calls of at
// most ChunkSize items, in input order.
type BatchJob struct {
	Name            string
	Description     string
	Items           []string
	ChunkSize       int
	CollectionLimit int
}

// Validate checks the structural invariants of the job.
func (j BatchJob) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("batch job requires a name")
	}
	if j.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", j.ChunkSize)
	}
	if j.CollectionLimit <= 0 {
		return fmt.Errorf("collection limit must be positive, got %d", j.CollectionLimit)
	}
	if j.ChunkSize > j.CollectionLimit {
		return fmt.Errorf("chunk size %d exceeds collection limit %d", j.ChunkSize, j.CollectionLimit)
	}
	return nil
}

// Collections returns how many playlists the job's items split into.
func (j BatchJob) Collections() int {
	if len(j.Items) == 0 {
		return 0
	}
	return int(math.Ceil(float64(len(j.Items)) / float64(j.CollectionLimit)))
}

// WellFormedID reports whether s looks like a valid catalog identifier:
// 22 base62 characters. Null tracks and local files fail this check.
func WellFormedID(s string) bool {
	if len(s) != 22 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
