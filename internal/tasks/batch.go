package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/services"
	"github.com/ericfjmnz/encore/internal/shared"
	"golang.org/x/time/rate"
)

// Writer creates playlists and appends matched items in fixed-size chunks.
//
// The remote has no multi-call transaction primitive, so there is no rollback:
// playlists created before a failure stay created and their identifiers are
// always reported back to the caller.
type Writer struct {
	svc     services.Service
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewWriter creates a Writer over the given service.
func NewWriter(svc services.Service, limiter *rate.Limiter, logger *log.Logger) *Writer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Writer{svc: svc, limiter: limiter, logger: logger}
}

// CreateAndPopulate executes a batch job.
//
// Items beyond the job's collection limit split into additional playlists
// named with a " Part N" suffix. Within a playlist, chunks are appended in
// input order, one limiter-paced call per chunk. The returned identifiers
// cover every playlist actually created, even when a later create or append
// fails. An empty item list is a [shared.ErrNoData], raised before any
// create call. onProgress, when non-nil, receives (chunks done, chunks total).
func (bw *Writer) CreateAndPopulate(ctx context.Context, job models.BatchJob, onProgress func(done, total int)) ([]string, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if len(job.Items) == 0 {
		return nil, fmt.Errorf("%w: no matched tracks", shared.ErrNoData)
	}

	parts := job.Collections()
	totalChunks := chunkCount(len(job.Items), job.ChunkSize)
	chunksDone := 0

	var created []string

	for part := 0; part < parts; part++ {
		name := job.Name
		if parts > 1 {
			name = fmt.Sprintf("%s Part %d", job.Name, part+1)
		}

		if err := pace(ctx, bw.limiter); err != nil {
			return created, err
		}

		playlist, err := bw.svc.CreatePlaylist(ctx, name, job.Description)
		if err != nil {
			if fatal(err) {
				return created, err
			}
			return created, fmt.Errorf("%w: %q: %v", shared.ErrCreateFailed, name, err)
		}
		created = append(created, playlist.ID)
		bw.logger.Info("created playlist", "name", name, "id", playlist.ID)

		lo := part * job.CollectionLimit
		hi := min(lo+job.CollectionLimit, len(job.Items))

		for start := lo; start < hi; start += job.ChunkSize {
			end := min(start+job.ChunkSize, hi)

			if err := pace(ctx, bw.limiter); err != nil {
				return created, err
			}

			if err := bw.svc.AddTracks(ctx, playlist.ID, job.Items[start:end]); err != nil {
				if fatal(err) {
					return created, err
				}
				return created, fmt.Errorf("appending chunk at %d to %q: %w", start, name, err)
			}

			chunksDone++
			if onProgress != nil {
				onProgress(chunksDone, totalChunks)
			}
		}
	}

	return created, nil
}

func chunkCount(items, chunkSize int) int {
	return (items + chunkSize - 1) / chunkSize
}
