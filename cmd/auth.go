package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ericfjmnz/encore/internal/server"
	"github.com/ericfjmnz/encore/internal/services"
	"github.com/ericfjmnz/encore/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func authDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".encore"
	}
	return filepath.Join(home, ".encore")
}

func tokenPath() string {
	return filepath.Join(authDir(), "token.json")
}

func saveToken(token *oauth2.Token) error {
	if err := os.MkdirAll(authDir(), 0755); err != nil {
		return fmt.Errorf("failed to create auth directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(tokenPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// ensureAuth loads the saved token into the Spotify service.
// Returns [shared.ErrNotAuthenticated] when no usable token exists.
func (r *Runner) ensureAuth(ctx context.Context) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	svc, ok := r.spotify.(*services.SpotifyService)
	if !ok {
		return nil // test doubles manage their own auth
	}

	token, err := loadToken()
	if err != nil {
		return fmt.Errorf("%w: run 'encore auth login'", shared.ErrNotAuthenticated)
	}

	svc.SetToken(ctx, token)
	return nil
}

// AuthLogin runs the PKCE authorization flow against a loopback callback server.
//
// The browser is pointed at the provider's consent page; the local server
// receives the authorization code and exchanges it together with the verifier
// that never left this process.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}
	svc, ok := r.spotify.(*services.SpotifyService)
	if !ok {
		return fmt.Errorf("%w: auth login requires the Spotify service", shared.ErrServiceUnavailable)
	}

	redirect, err := url.Parse(r.config.Credentials.Spotify.RedirectURI)
	if err != nil {
		return fmt.Errorf("%w: bad redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	state := shared.GenerateID()
	verifier := oauth2.GenerateVerifier()

	handler := server.NewOAuthHandler(svc.OAuthConfig(), state, verifier)
	router := server.NewBasicRouter()
	router.Handler(handler)

	srv := &http.Server{Addr: redirect.Host, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("callback server failed", "err", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := svc.AuthURL(state, verifier)
	r.writePlain("Opening browser for authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.writePlain("Visit this URL to authorize:\n%s\n", authURL)
	}

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}
		if err := saveToken(result.Token); err != nil {
			return err
		}
		svc.SetToken(ctx, result.Token)
		r.logger.Info("authentication successful")
		return r.writePlain("✓ Authenticated. Token saved to %s\n", tokenPath())

	case <-ctx.Done():
		return fmt.Errorf("%w: authorization flow interrupted", shared.ErrCancelled)

	case <-time.After(3 * time.Minute):
		return fmt.Errorf("%w: timed out waiting for authorization callback", shared.ErrTimeout)
	}
}

// AuthStatus reports whether a saved token exists and whether it is expired.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	token, err := loadToken()
	if err != nil {
		return r.writePlain("✗ Not authenticated. Run 'encore auth login'.\n")
	}

	r.writePlain("✓ Token present at %s\n", tokenPath())
	if token.Expiry.IsZero() {
		return r.writePlain("Expiry: unknown\n")
	}
	if time.Now().After(token.Expiry) {
		return r.writePlain("Expiry: %s (expired, will refresh on next use)\n", token.Expiry.Format(time.RFC1123))
	}
	return r.writePlain("Expiry: %s\n", token.Expiry.Format(time.RFC1123))
}

// AuthLogout removes the saved token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := os.Remove(tokenPath()); err != nil {
		if os.IsNotExist(err) {
			return r.writePlain("No saved token.\n")
		}
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return r.writePlain("✓ Token removed.\n")
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with the streaming service",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize via the browser (PKCE flow)",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the saved token's state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the saved token",
				Action: r.AuthLogout,
			},
		},
	}
}
