package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfjmnz/encore/internal/repositories"
	"github.com/ericfjmnz/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) openCache() (*repositories.ResponseCache, func(), error) {
	db, err := shared.NewDatabase(r.config.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Cache.MaxOpenConns, r.config.Cache.MaxIdleConns)

	cache := repositories.NewResponseCache(db, time.Duration(r.config.Cache.TTLMinutes)*time.Minute)
	if err := cache.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate cache: %w", err)
	}

	return cache, func() { db.Close() }, nil
}

// CacheStats prints the number of cached upstream responses.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	cache, closeDB, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeDB()

	count, err := cache.Count()
	if err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}

	r.writePlain("Cache: %s\n", r.config.Cache.Path)
	r.writePlain("Entries: %d\n", count)
	r.writePlain("TTL: %d minutes\n", r.config.Cache.TTLMinutes)
	return nil
}

// CachePrune removes expired entries.
func (r *Runner) CachePrune(ctx context.Context, cmd *cli.Command) error {
	cache, closeDB, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeDB()

	removed, err := cache.PruneExpired()
	if err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}

	return r.writePlain("✓ Pruned %d expired entries\n", removed)
}

// CachePurge removes every cached response.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	cache, closeDB, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeDB()

	removed, err := cache.Purge()
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	return r.writePlain("✓ Purged %d entries\n", removed)
}

// cacheCommand manages the proxy's upstream response cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the proxy's response cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache size and settings",
				Action: r.CacheStats,
			},
			{
				Name:   "prune",
				Usage:  "Remove expired entries",
				Action: r.CachePrune,
			},
			{
				Name:   "purge",
				Usage:  "Remove all entries",
				Action: r.CachePurge,
			},
		},
	}
}
