package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ericfjmnz/encore/internal/repositories"
	"github.com/ericfjmnz/encore/internal/server"
	"github.com/ericfjmnz/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

func proxyBaseURL(config *shared.Config) string {
	host := config.Proxy.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, config.Proxy.Port)
}

// ProxyServe runs the scrape proxy: a JSON endpoint over the station's daily
// playlist pages, with a sqlite read-through cache in front of the upstream.
func (r *Runner) ProxyServe(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Proxy.Host
	}
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Proxy.Port
	}

	db, err := shared.NewDatabase(r.config.Cache.Path)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer db.Close()
	shared.ConfigureDatabase(db, r.config.Cache.MaxOpenConns, r.config.Cache.MaxIdleConns)

	cache := repositories.NewResponseCache(db, time.Duration(r.config.Cache.TTLMinutes)*time.Minute)
	if err := cache.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate cache: %w", err)
	}

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger), server.CORSMiddleware())
	router.Handler(server.NewPlaylistHandler(r.config.Radio.BaseURL, r.httpClient, cache, r.logger))
	router.Handler(&server.HealthHandler{})

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		r.logger.Info("proxy listening", "addr", addr, "upstream", r.config.Radio.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("proxy server failed: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down proxy")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// ProxyHealth checks a running proxy's /health endpoint.
func (r *Runner) ProxyHealth(ctx context.Context, cmd *cli.Command) error {
	if err := r.proxy.Health(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Proxy is healthy\n")
}

func proxyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "proxy",
		Usage: "Run or check the scrape proxy",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the scrape proxy server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "host", Usage: "Bind host (defaults to config)"},
					&cli.IntFlag{Name: "port", Usage: "Bind port (defaults to config)"},
				},
				Action: r.ProxyServe,
			},
			{
				Name:   "health",
				Usage:  "Check a running proxy",
				Action: r.ProxyHealth,
			},
		},
	}
}
