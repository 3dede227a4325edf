package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ericfjmnz/encore/internal/shared"
	"github.com/ericfjmnz/encore/internal/tasks"
	"github.com/ericfjmnz/encore/internal/ui"
	"github.com/urfave/cli/v3"
)

// runTask executes one curation task through the controller, rendering
// progress either as a TUI progress bar or as plain log lines (--plain).
// An interrupt signal cancels the task cooperatively.
func (r *Runner) runTask(ctx context.Context, cmd *cli.Command, kind string, task tasks.TaskFunc) error {
	if err := r.ensureAuth(ctx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.Bool("plain") {
		return r.runTaskPlain(ctx, kind, task)
	}
	return r.runTaskTUI(ctx, kind, task)
}

func (r *Runner) runTaskPlain(ctx context.Context, kind string, task tasks.TaskFunc) error {
	progress := make(chan tasks.ProgressUpdate, 50)

	if err := r.controller.Start(ctx, kind, task, progress); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		r.controller.Wait()
		close(progress)
		close(done)
	}()

	for update := range progress {
		r.writePlain("[%3d%%] %s\n", update.Percent, update.Message)
	}
	<-done

	return r.reportStatus(kind)
}

func (r *Runner) runTaskTUI(ctx context.Context, kind string, task tasks.TaskFunc) error {
	// Logs would tear the progress view; silence them for the duration.
	prev := r.logger
	r.SetLogger(shared.NewLogger(io.Discard))
	defer r.SetLogger(prev)

	model := ui.NewProgressModel(ctx, r.controller, kind, task)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running progress view: %w", err)
	}

	return r.reportStatus(kind)
}

// reportStatus prints the task's terminal state and clears it from the
// controller so the next invocation starts from Idle.
func (r *Runner) reportStatus(kind string) error {
	status := r.controller.Status()
	defer r.controller.Dismiss()

	switch status.State {
	case tasks.Succeeded:
		result := status.Result
		r.writePlainln("✓ %s complete: matched %d/%d", kind, result.Matched, result.Requested)
		for _, id := range result.PlaylistIDs {
			r.writePlain("  playlist: %s\n", id)
		}
		return nil
	case tasks.Cancelled:
		r.writePlainln("Cancelled.")
		r.reportPartial(status.Result)
		return nil
	case tasks.Failed:
		r.reportPartial(status.Result)
		return fmt.Errorf("%s task failed: %s", kind, status.Reason)
	default:
		return fmt.Errorf("%s task ended in unexpected state %s", kind, status.State)
	}
}

// reportPartial surfaces playlists that were created before a task stopped.
func (r *Runner) reportPartial(result *tasks.TaskResult) {
	if result == nil || len(result.PlaylistIDs) == 0 {
		return
	}
	r.writePlain("Created before the task stopped:\n")
	for _, id := range result.PlaylistIDs {
		r.writePlain("  playlist: %s\n", id)
	}
}

// CurateRadio scrapes a daily playlist through the proxy and reconciles it
// into a new playlist.
func (r *Runner) CurateRadio(ctx context.Context, cmd *cli.Command) error {
	year := cmd.String("year")
	month := strings.ToLower(cmd.String("month"))
	day := cmd.String("day")

	if year == "" || month == "" || day == "" {
		return fmt.Errorf("%w: --year, --month and --day are required", shared.ErrMissingArgument)
	}

	return r.runTask(ctx, cmd, "radio", r.engine.Radio(year, month, day, cmd.String("name")))
}

// CurateTop snapshots the user's top tracks into a dated playlist.
func (r *Runner) CurateTop(ctx context.Context, cmd *cli.Command) error {
	timeRange := cmd.String("range")
	switch timeRange {
	case "short_term", "medium_term", "long_term":
	default:
		return fmt.Errorf("%w: --range must be short_term, medium_term or long_term", shared.ErrInvalidArgument)
	}

	return r.runTask(ctx, cmd, "toptracks", r.engine.TopTracks(timeRange, cmd.Int("limit")))
}

// CurateDedup walks the whole library into one consolidated playlist.
func (r *Runner) CurateDedup(ctx context.Context, cmd *cli.Command) error {
	return r.runTask(ctx, cmd, "dedup", r.engine.Dedup(cmd.String("name")))
}

// CurateFusion builds a recommendation playlist seeded from the library's artists.
func (r *Runner) CurateFusion(ctx context.Context, cmd *cli.Command) error {
	return r.runTask(ctx, cmd, "fusion", r.engine.Fusion(cmd.String("name"), cmd.Int("limit")))
}

// CurateSuggest asks the local model for tracks and reconciles the suggestions.
func (r *Runner) CurateSuggest(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(cmd.StringArg("prompt"))
	if prompt == "" {
		return fmt.Errorf("%w: a prompt is required, e.g. 'rainy day piano'", shared.ErrMissingArgument)
	}

	count := cmd.Int("count")
	if count <= 0 {
		count = r.config.Suggest.TrackCount
	}

	return r.runTask(ctx, cmd, "suggest", r.engine.Suggest(prompt, cmd.String("name"), count))
}

func plainFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "plain",
		Usage: "Print progress as plain lines instead of the TUI",
	}
}

func nameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "name",
		Aliases: []string{"n"},
		Usage:   "Name for the created playlist (defaults per task)",
	}
}

func curateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "curate",
		Usage: "Run a curation task (one at a time)",
		Commands: []*cli.Command{
			{
				Name:  "radio",
				Usage: "Scrape a station's daily playlist into a new playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "year", Usage: "Four-digit year, e.g. 2025"},
					&cli.StringFlag{Name: "month", Usage: "Three-letter month, e.g. jun"},
					&cli.StringFlag{Name: "day", Usage: "Day of month, e.g. 15"},
					nameFlag(),
					plainFlag(),
				},
				Action: r.CurateRadio,
			},
			{
				Name:  "top",
				Usage: "Snapshot your top tracks into a dated playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "range", Value: "short_term", Usage: "short_term, medium_term or long_term"},
					&cli.IntFlag{Name: "limit", Value: 50, Usage: "How many tracks to snapshot"},
					nameFlag(),
					plainFlag(),
				},
				Action: r.CurateTop,
			},
			{
				Name:   "dedup",
				Usage:  "Collect every unique track in your library into one playlist",
				Flags:  []cli.Flag{nameFlag(), plainFlag()},
				Action: r.CurateDedup,
			},
			{
				Name:  "fusion",
				Usage: "Build a recommendation mix seeded from your library's artists",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 50, Usage: "How many recommendations to request"},
					nameFlag(),
					plainFlag(),
				},
				Action: r.CurateFusion,
			},
			{
				Name:      "suggest",
				Usage:     "Ask the local model for tracks matching a prompt",
				Arguments: []cli.Argument{&cli.StringArg{Name: "prompt"}},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Usage: "How many suggestions to request"},
					nameFlag(),
					plainFlag(),
				},
				Action: r.CurateSuggest,
			},
		},
	}
}
