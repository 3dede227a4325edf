package main

import (
	"context"
	"fmt"

	"github.com/ericfjmnz/encore/internal/models"
	"github.com/urfave/cli/v3"
)

// LibraryPlaylists lists the user's playlists in listing order.
func (r *Runner) LibraryPlaylists(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureAuth(ctx); err != nil {
		return err
	}

	playlists, err := r.engine.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	r.writePlain("%d playlists\n\n", len(playlists))
	for _, pl := range playlists {
		r.writePlain("%-24s %4d tracks  %s\n", pl.ID, pl.TrackCount, pl.Name)
	}
	return nil
}

// LibraryTopArtists lists the user's top artists for a time range.
func (r *Runner) LibraryTopArtists(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureAuth(ctx); err != nil {
		return err
	}

	artists, err := r.spotify.TopArtists(ctx, cmd.String("range"), cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to fetch top artists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, true)
	}

	for i, artist := range artists {
		r.writePlain("%2d. %s\n", i+1, artist.Name)
	}
	return nil
}

// LibraryRecent lists the user's recently played tracks.
func (r *Runner) LibraryRecent(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureAuth(ctx); err != nil {
		return err
	}

	tracks, err := r.spotify.RecentlyPlayed(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to fetch recently played: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}

	printTracks(r, tracks)
	return nil
}

func printTracks(r *Runner, tracks []models.Track) {
	for i, track := range tracks {
		r.writePlain("%2d. %s / %s\n", i+1, track.Artist, track.Title)
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Emit JSON instead of a table",
	}
}

func libraryCommand(r *Runner) *cli.Command {
	rangeFlag := &cli.StringFlag{
		Name:  "range",
		Value: "medium_term",
		Usage: "short_term, medium_term or long_term",
	}
	limitFlag := &cli.IntFlag{
		Name:  "limit",
		Value: 20,
		Usage: "Maximum number of items",
	}

	return &cli.Command{
		Name:  "library",
		Usage: "Inspect your library",
		Commands: []*cli.Command{
			{
				Name:   "playlists",
				Usage:  "List your playlists",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.LibraryPlaylists,
			},
			{
				Name:   "top-artists",
				Usage:  "List your top artists",
				Flags:  []cli.Flag{rangeFlag, limitFlag, jsonFlag()},
				Action: r.LibraryTopArtists,
			},
			{
				Name:   "recent",
				Usage:  "List your recently played tracks",
				Flags:  []cli.Flag{limitFlag, jsonFlag()},
				Action: r.LibraryRecent,
			},
		},
	}
}
