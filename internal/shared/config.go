package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Radio       RadioConfig       `toml:"radio"`
	Proxy       ProxyConfig       `toml:"proxy"`
	Cache       CacheConfig       `toml:"cache"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Suggest     SuggestConfig     `toml:"suggest"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials for the PKCE flow.
// No client secret is held; the flow relies on a locally generated verifier.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
}

// RadioConfig contains settings for the daily playlist scrape target.
type RadioConfig struct {
	BaseURL string `toml:"base_url"`
}

// ProxyConfig contains HTTP settings for the scrape proxy server.
type ProxyConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// CacheConfig contains settings for the sqlite response cache.
type CacheConfig struct {
	Path         string `toml:"path"`
	TTLMinutes   int    `toml:"ttl_minutes"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PipelineConfig contains tunables for the scrape/reconcile pipeline.
//
// The rates are requests per second and back the inter-call delays inserted
// between paginated fetches, search calls, and chunk appends.
type PipelineConfig struct {
	PlaylistPageSize int     `toml:"playlist_page_size"`
	TrackPageSize    int     `toml:"track_page_size"`
	ChunkSize        int     `toml:"chunk_size"`
	CollectionLimit  int     `toml:"collection_limit"`
	PageRate         float64 `toml:"page_rate"`
	SearchRate       float64 `toml:"search_rate"`
	WriteRate        float64 `toml:"write_rate"`
}

// SuggestConfig contains settings for the local Ollama suggestion backend.
type SuggestConfig struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	TrackCount int    `toml:"track_count"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays credentials from the environment onto the config.
//
// A .env file in the working directory is loaded first when present
// (missing files are not an error). Recognized variables:
// SPOTIFY_CLIENT_ID, SPOTIFY_REDIRECT_URI, ENCORE_RADIO_BASE_URL.
func ApplyEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		config.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		config.Credentials.Spotify.RedirectURI = v
	}
	if v := os.Getenv("ENCORE_RADIO_BASE_URL"); v != "" {
		config.Radio.BaseURL = v
	}
}
