package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrReauthRequired   = fmt.Errorf("session expired, re-authentication required")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Pipeline errors
	ErrFetch        = fmt.Errorf("fetch failed")
	ErrParse        = fmt.Errorf("parse failed")
	ErrNoData       = fmt.Errorf("no data to write")
	ErrNoPlaylists  = fmt.Errorf("library contains no playlists")
	ErrRateLimited  = fmt.Errorf("rate limited by remote API")
	ErrCancelled    = fmt.Errorf("operation cancelled")
	ErrTaskRunning  = fmt.Errorf("another task is already running")
	ErrCreateFailed = fmt.Errorf("playlist creation failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
