package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/services"
	"github.com/ericfjmnz/encore/internal/shared"
	"golang.org/x/time/rate"
)

// Matcher reconciles free-text title/performer pairs against the catalog.
//
// Matching is deliberately best-effort: one field-scoped search per query,
// first candidate or none, no retries and no alternate spellings. Queries run
// strictly sequentially with the limiter's delay between dispatches.
type Matcher struct {
	svc     services.Service
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewMatcher creates a Matcher over the given service.
func NewMatcher(svc services.Service, limiter *rate.Limiter, logger *log.Logger) *Matcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Matcher{svc: svc, limiter: limiter, logger: logger}
}

// MatchAll resolves each query to a track identifier where possible.
//
// A failed search for one query is logged and recorded as no-match; it never
// aborts the batch. Cancellation and expired credentials do abort, returning
// the results accumulated so far alongside the error. onProgress, when
// non-nil, receives each result as it lands.
func (m *Matcher) MatchAll(ctx context.Context, queries []models.MatchQuery, onProgress func(done, total int, res models.MatchResult)) ([]models.MatchResult, error) {
	results := make([]models.MatchResult, 0, len(queries))

	for i, query := range queries {
		if err := pace(ctx, m.limiter); err != nil {
			return results, err
		}

		result := models.MatchResult{Query: query}

		track, err := m.svc.SearchTrack(ctx, query.Title, query.Performer)
		switch {
		case err != nil && fatal(err):
			return results, err
		case err != nil:
			m.logger.Warn("search failed, treating as no match", "title", query.Title, "performer", query.Performer, "err", err)
		case track != nil:
			result.TrackID = track.ID
		}

		results = append(results, result)
		if onProgress != nil {
			onProgress(i+1, len(queries), result)
		}
	}

	return results, nil
}

// MatchedIDs extracts the resolved identifiers from results, in input order.
func MatchedIDs(results []models.MatchResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.TrackID != "" {
			ids = append(ids, r.TrackID)
		}
	}
	return ids
}
