package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/services"
	"github.com/ericfjmnz/encore/internal/shared"
	"golang.org/x/time/rate"
)

// pace is the shared suspension point: the context is observed first, then
// the limiter inserts the inter-call delay. Called before every network call
// in the pipeline, which is what makes cancellation take effect within one
// suspension-point boundary.
func pace(ctx context.Context, limiter *rate.Limiter) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCancelled, err)
	}
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrCancelled, err)
		}
	}
	return nil
}

// fatal reports whether an error must abort the whole walk rather than be
// swallowed as a per-item failure.
func fatal(err error) bool {
	return errors.Is(err, shared.ErrCancelled) || errors.Is(err, shared.ErrReauthRequired)
}

// Walker enumerates a user's entire library, deduplicating track identifiers
// and collecting referenced artist identifiers.
type Walker struct {
	svc              services.Service
	limiter          *rate.Limiter
	logger           *log.Logger
	playlistPageSize int
	trackPageSize    int
}

// NewWalker creates a Walker over the given service.
func NewWalker(svc services.Service, limiter *rate.Limiter, logger *log.Logger, playlistPageSize, trackPageSize int) *Walker {
	if playlistPageSize <= 0 {
		playlistPageSize = 50
	}
	if trackPageSize <= 0 {
		trackPageSize = 100
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Walker{
		svc:              svc,
		limiter:          limiter,
		logger:           logger,
		playlistPageSize: playlistPageSize,
		trackPageSize:    trackPageSize,
	}
}

// WalkLibrary pages through all playlists, then all tracks per playlist.
//
// Malformed entries (null tracks, bad identifiers) are logged and skipped; a
// single playlist's track page failing abandons that playlist's remaining
// pages but preserves results from the others. Zero playlists is a
// [shared.ErrNoPlaylists]. onProgress, when non-nil, receives
// (playlists done, playlists total) after each playlist completes.
func (w *Walker) WalkLibrary(ctx context.Context, onProgress func(done, total int)) (*models.LibrarySnapshot, error) {
	playlists, err := w.allPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return nil, shared.ErrNoPlaylists
	}

	snapshot := models.NewLibrarySnapshot()
	snapshot.Playlists = len(playlists)

	for i, pl := range playlists {
		if err := w.walkPlaylist(ctx, pl, snapshot); err != nil {
			if fatal(err) {
				return nil, err
			}
			w.logger.Warn("skipping remainder of playlist", "playlist", pl.ID, "err", err)
		}
		if onProgress != nil {
			onProgress(i+1, len(playlists))
		}
	}

	return snapshot, nil
}

// allPlaylists pages through the user's playlist listing in listing order.
func (w *Walker) allPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	offset := 0

	for {
		if err := pace(ctx, w.limiter); err != nil {
			return nil, err
		}

		page, err := w.svc.PlaylistPage(ctx, offset, w.playlistPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing playlists: %w", err)
		}

		playlists = append(playlists, page.Items...)

		if page.Next == "" {
			break
		}
		offset += w.playlistPageSize
	}

	return playlists, nil
}

// walkPlaylist accumulates one playlist's tracks into the snapshot.
func (w *Walker) walkPlaylist(ctx context.Context, pl models.Playlist, snapshot *models.LibrarySnapshot) error {
	offset := 0

	for {
		if err := pace(ctx, w.limiter); err != nil {
			return err
		}

		page, err := w.svc.PlaylistTracksPage(ctx, pl.ID, offset, w.trackPageSize)
		if err != nil {
			return fmt.Errorf("tracks page at offset %d: %w", offset, err)
		}

		for _, track := range page.Items {
			if !models.WellFormedID(track.ID) {
				w.logger.Warn("skipping malformed track entry", "playlist", pl.ID, "id", track.ID)
				continue
			}
			snapshot.Add(track)
		}

		if page.Next == "" {
			return nil
		}
		offset += w.trackPageSize
	}
}
