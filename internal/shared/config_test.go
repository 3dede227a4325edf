package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Radio.BaseURL != "https://www.wqxr.org" {
		t.Errorf("Radio.BaseURL = %q, want the station host", config.Radio.BaseURL)
	}
	if config.Proxy.Port != 8080 {
		t.Errorf("Proxy.Port = %d, want 8080", config.Proxy.Port)
	}
	if config.Pipeline.PlaylistPageSize != 50 || config.Pipeline.TrackPageSize != 100 {
		t.Errorf("page sizes = %d/%d, want 50/100", config.Pipeline.PlaylistPageSize, config.Pipeline.TrackPageSize)
	}
	if config.Pipeline.ChunkSize != 100 || config.Pipeline.CollectionLimit != 10000 {
		t.Errorf("chunk/limit = %d/%d, want 100/10000", config.Pipeline.ChunkSize, config.Pipeline.CollectionLimit)
	}
	if config.Cache.TTLMinutes != 30 {
		t.Errorf("Cache.TTLMinutes = %d, want 30", config.Cache.TTLMinutes)
	}
	if config.Suggest.Model == "" {
		t.Error("Suggest.Model should have a default")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses a valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.spotify]
client_id = "abc123"
redirect_uri = "http://localhost:9999/callback"

[pipeline]
chunk_size = 50
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if config.Credentials.Spotify.ClientID != "abc123" {
			t.Errorf("ClientID = %q, want abc123", config.Credentials.Spotify.ClientID)
		}
		if config.Pipeline.ChunkSize != 50 {
			t.Errorf("ChunkSize = %d, want 50", config.Pipeline.ChunkSize)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected error for a missing file")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for malformed TOML")
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile() error = %v", err)
	}

	// The created file must round-trip through the loader.
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() on created file error = %v", err)
	}
	if config.Radio.BaseURL == "" {
		t.Error("created config missing radio base URL")
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("expected error when the file already exists")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-client")
	t.Setenv("ENCORE_RADIO_BASE_URL", "http://localhost:9090")

	config := DefaultConfig()
	ApplyEnv(config)

	if config.Credentials.Spotify.ClientID != "env-client" {
		t.Errorf("ClientID = %q, want the environment override", config.Credentials.Spotify.ClientID)
	}
	if config.Radio.BaseURL != "http://localhost:9090" {
		t.Errorf("Radio.BaseURL = %q, want the environment override", config.Radio.BaseURL)
	}

	t.Setenv("SPOTIFY_CLIENT_ID", "")
	fresh := DefaultConfig()
	fresh.Credentials.Spotify.ClientID = "from-file"
	ApplyEnv(fresh)
	if fresh.Credentials.Spotify.ClientID != "from-file" {
		t.Error("empty environment variables must not clobber file values")
	}
}
