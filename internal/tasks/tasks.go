package tasks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ericfjmnz/encore/internal/models"
	"github.com/ericfjmnz/encore/internal/services"
	"github.com/ericfjmnz/encore/internal/shared"
	"golang.org/x/time/rate"
)

// Suggester is the slice of the Ollama client the suggest task needs.
type Suggester interface {
	SuggestTracks(ctx context.Context, prompt string, count int) ([]models.MatchQuery, error)
}

// RadioSource fetches a scraped daily playlist, normally via the proxy.
type RadioSource interface {
	DailyPlaylist(ctx context.Context, year, month, day string) ([]models.ScrapedTrack, error)
}

// CurationEngine builds the runnable task functions that the Controller
// executes. Each constructor returns a TaskFunc closed over its inputs; the
// engine itself is stateless between tasks.
type CurationEngine struct {
	svc       services.Service
	radio     RadioSource
	suggester Suggester
	logger    *log.Logger
	cfg       shared.PipelineConfig

	pageLimiter   *rate.Limiter
	searchLimiter *rate.Limiter
	writeLimiter  *rate.Limiter
}

// NewCurationEngine creates an engine over the given service and sources.
// radio and suggester may be nil when the corresponding task kinds are unused.
func NewCurationEngine(svc services.Service, radio RadioSource, suggester Suggester, cfg shared.PipelineConfig, logger *log.Logger) *CurationEngine {
	if cfg.PlaylistPageSize <= 0 {
		cfg.PlaylistPageSize = 50
	}
	if cfg.TrackPageSize <= 0 {
		cfg.TrackPageSize = 100
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 100
	}
	if cfg.CollectionLimit <= 0 {
		cfg.CollectionLimit = 10000
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &CurationEngine{
		svc:           svc,
		radio:         radio,
		suggester:     suggester,
		logger:        logger,
		cfg:           cfg,
		pageLimiter:   newLimiter(cfg.PageRate),
		searchLimiter: newLimiter(cfg.SearchRate),
		writeLimiter:  newLimiter(cfg.WriteRate),
	}
}

// newLimiter builds a limiter for the given requests-per-second rate.
// Non-positive rates disable pacing entirely.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func (e *CurationEngine) walker() *Walker {
	return NewWalker(e.svc, e.pageLimiter, e.logger, e.cfg.PlaylistPageSize, e.cfg.TrackPageSize)
}

func (e *CurationEngine) matcher() *Matcher {
	return NewMatcher(e.svc, e.searchLimiter, e.logger)
}

func (e *CurationEngine) writer() *Writer {
	return NewWriter(e.svc, e.writeLimiter, e.logger)
}

func (e *CurationEngine) job(name, description string, items []string) models.BatchJob {
	return models.BatchJob{
		Name:            name,
		Description:     description,
		Items:           items,
		ChunkSize:       e.cfg.ChunkSize,
		CollectionLimit: e.cfg.CollectionLimit,
	}
}

// write runs the batch writer for the given stage and finishes the task.
func (e *CurationEngine) write(ctx context.Context, s stage, job models.BatchJob, matched, requested int, report func(ProgressUpdate)) (*TaskResult, error) {
	created, err := e.writer().CreateAndPopulate(ctx, job, func(done, total int) {
		report(writeUpdate(s, done, total))
	})
	if err != nil {
		if len(created) > 0 {
			e.logger.Warn("write failed partway, playlists were still created", "created", created)
		}
		return &TaskResult{PlaylistIDs: created, Matched: matched, Requested: requested}, err
	}

	report(doneUpdate(created))
	return &TaskResult{PlaylistIDs: created, Matched: matched, Requested: requested}, nil
}

// Radio builds the flagship scrape-and-reconcile task: fetch a station's
// daily playlist through the proxy, match each row against the catalog, and
// write the matches to a new playlist.
//
// Month is the station's lowercase three-letter form, e.g. "jun".
// Stage weights: scrape 0-10, match 10-85, write 85-100.
func (e *CurationEngine) Radio(year, month, day, playlistName string) TaskFunc {
	scrapeStage := stage{0, 10}
	matchStage := stage{10, 85}
	writeStage := stage{85, 100}

	return func(ctx context.Context, report func(ProgressUpdate)) (*TaskResult, error) {
		report(scrapeUpdate(scrapeStage, year, month, day))

		if err := pace(ctx, e.pageLimiter); err != nil {
			return nil, err
		}
		scraped, err := e.radio.DailyPlaylist(ctx, year, month, day)
		if err != nil {
			return nil, err
		}
		if len(scraped) == 0 {
			return nil, fmt.Errorf("%w: no tracks scraped for %s %s, %s", shared.ErrNoData, month, day, year)
		}

		queries := make([]models.MatchQuery, len(scraped))
		for i, row := range scraped {
			queries[i] = models.MatchQuery{Title: row.Title, Performer: row.Composer}
		}

		results, err := e.matcher().MatchAll(ctx, queries, func(done, total int, res models.MatchResult) {
			report(matchUpdate(matchStage, done, total, res.Query.Title, res.Query.Performer))
		})
		if err != nil {
			return nil, err
		}

		matched := MatchedIDs(results)
		e.logger.Info("matching complete", "matched", len(matched), "scraped", len(scraped))

		if playlistName == "" {
			playlistName = fmt.Sprintf("WQXR %s %s, %s", month, day, year)
		}
		description := fmt.Sprintf("Daily playlist for %s %s, %s. Matched %d of %d scraped tracks.",
			month, day, year, len(matched), len(scraped))

		return e.write(ctx, writeStage, e.job(playlistName, description, matched), len(matched), len(scraped), report)
	}
}

// TopTracks builds a task that snapshots the user's top tracks for a time
// range into a dated playlist.
//
// Stage weights: fetch 0-40, write 40-100.
func (e *CurationEngine) TopTracks(timeRange string, limit int) TaskFunc {
	fetchStage := stage{0, 40}
	writeStage := stage{40, 100}

	return func(ctx context.Context, report func(ProgressUpdate)) (*TaskResult, error) {
		report(fetchUpdate(fetchStage, 0, 1, "top tracks"))

		if err := pace(ctx, e.pageLimiter); err != nil {
			return nil, err
		}
		tracks, err := e.svc.TopTracks(ctx, timeRange, limit)
		if err != nil {
			return nil, err
		}
		report(fetchUpdate(fetchStage, 1, 1, "top tracks"))

		seen := make(map[string]struct{}, len(tracks))
		ids := make([]string, 0, len(tracks))
		for _, t := range tracks {
			if !models.WellFormedID(t.ID) {
				continue
			}
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			ids = append(ids, t.ID)
		}

		name := fmt.Sprintf("Top Tracks (%s) %s", timeRange, time.Now().Format("Jan 2006"))
		description := fmt.Sprintf("Your %s top tracks, snapshotted %s.", timeRange, time.Now().Format("January 2, 2006"))

		return e.write(ctx, writeStage, e.job(name, description, ids), len(ids), len(tracks), report)
	}
}

// Dedup builds a task that walks the whole library and writes every unique
// track to a single consolidated playlist (split into parts past the
// collection limit). Identifiers are sorted so repeat runs produce the same
// ordering.
//
// Stage weights: walk 0-60, write 60-100.
func (e *CurationEngine) Dedup(playlistName string) TaskFunc {
	walkStage := stage{0, 60}
	writeStage := stage{60, 100}

	return func(ctx context.Context, report func(ProgressUpdate)) (*TaskResult, error) {
		snapshot, err := e.walker().WalkLibrary(ctx, func(done, total int) {
			report(walkUpdate(walkStage, done, total))
		})
		if err != nil {
			return nil, err
		}

		ids := make([]string, 0, len(snapshot.TrackIDs))
		for id := range snapshot.TrackIDs {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		e.logger.Info("library walked", "playlists", snapshot.Playlists, "unique_tracks", len(ids))

		if playlistName == "" {
			playlistName = "Everything, Once"
		}
		description := fmt.Sprintf("Every unique track from your %d playlists.", snapshot.Playlists)

		return e.write(ctx, writeStage, e.job(playlistName, description, ids), len(ids), len(ids), report)
	}
}

// maxFusionSeeds is the recommendation endpoint's seed ceiling.
const maxFusionSeeds = 5

// Fusion builds a task that walks the library, picks up to five evenly spaced
// artist seeds from the collected set, and writes a recommendation playlist
// from those seeds.
//
// Stage weights: walk 0-50, seed 50-60, write 60-100.
func (e *CurationEngine) Fusion(playlistName string, limit int) TaskFunc {
	walkStage := stage{0, 50}
	seedStage := stage{50, 60}
	writeStage := stage{60, 100}

	return func(ctx context.Context, report func(ProgressUpdate)) (*TaskResult, error) {
		snapshot, err := e.walker().WalkLibrary(ctx, func(done, total int) {
			report(walkUpdate(walkStage, done, total))
		})
		if err != nil {
			return nil, err
		}

		seeds := fusionSeeds(snapshot.ArtistIDs, maxFusionSeeds)
		if len(seeds) == 0 {
			return nil, fmt.Errorf("%w: library has no usable artist references", shared.ErrNoData)
		}
		report(seedUpdate(seedStage, len(seeds)))

		if err := pace(ctx, e.pageLimiter); err != nil {
			return nil, err
		}
		tracks, err := e.svc.Recommendations(ctx, seeds, limit)
		if err != nil {
			return nil, err
		}

		ids := make([]string, 0, len(tracks))
		for _, t := range tracks {
			if models.WellFormedID(t.ID) {
				ids = append(ids, t.ID)
			}
		}

		if playlistName == "" {
			playlistName = "Fusion Mix"
		}
		description := fmt.Sprintf("Recommendations fused from %d artists across your library.", len(seeds))

		return e.write(ctx, writeStage, e.job(playlistName, description, ids), len(ids), len(tracks), report)
	}
}

// fusionSeeds picks up to max artist identifiers, evenly spaced over the
// sorted set so the selection is deterministic and spans the library.
func fusionSeeds(artistIDs map[string]struct{}, max int) []string {
	sorted := make([]string, 0, len(artistIDs))
	for id := range artistIDs {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	if len(sorted) <= max {
		return sorted
	}

	seeds := make([]string, 0, max)
	for i := 0; i < max; i++ {
		seeds = append(seeds, sorted[i*len(sorted)/max])
	}
	return seeds
}

// Suggest builds a task that asks the local model for tracks matching a
// prompt, matches the suggestions against the catalog, and writes the hits to
// a new playlist.
//
// Stage weights: suggest 0-15, match 15-85, write 85-100.
func (e *CurationEngine) Suggest(prompt, playlistName string, count int) TaskFunc {
	suggestStage := stage{0, 15}
	matchStage := stage{15, 85}
	writeStage := stage{85, 100}

	return func(ctx context.Context, report func(ProgressUpdate)) (*TaskResult, error) {
		report(suggestUpdate(suggestStage, prompt))

		queries, err := e.suggester.SuggestTracks(ctx, prompt, count)
		if err != nil {
			return nil, err
		}

		results, err := e.matcher().MatchAll(ctx, queries, func(done, total int, res models.MatchResult) {
			report(matchUpdate(matchStage, done, total, res.Query.Title, res.Query.Performer))
		})
		if err != nil {
			return nil, err
		}

		matched := MatchedIDs(results)
		e.logger.Info("suggestions matched", "matched", len(matched), "suggested", len(queries))

		if playlistName == "" {
			playlistName = "Suggested: " + prompt
		}
		description := fmt.Sprintf("Model-suggested tracks for %q. Matched %d of %d suggestions.",
			prompt, len(matched), len(queries))

		return e.write(ctx, writeStage, e.job(playlistName, description, matched), len(matched), len(queries), report)
	}
}

// Playlists lists the user's playlists in listing order, for the CLI's
// library views. Shares the walker's pagination but stops at the listing.
func (e *CurationEngine) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return e.walker().allPlaylists(ctx)
}
