package main

import (
	"context"
	"os"

	"github.com/ericfjmnz/encore/internal/services"
	"github.com/ericfjmnz/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}
	shared.ApplyEnv(config)

	var spotify services.Service
	if config.Credentials.Spotify.ClientID != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify); err == nil {
			spotify = svc
		} else {
			logger.Warn("spotify service unavailable", "err", err)
		}
	}

	proxy := services.NewProxyClient(proxyBaseURL(config), nil)
	suggester := services.NewOllamaClient(config.Suggest.BaseURL, config.Suggest.Model)

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Spotify:   spotify,
		Proxy:     proxy,
		Suggester: suggester,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "encore",
		Usage:    "Scrape daily radio playlists and curate them into your streaming library",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
