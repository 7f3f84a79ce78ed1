package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./spinsync.db" {
			t.Errorf("expected database path ./spinsync.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Spotify.SearchLimit != 20 {
			t.Errorf("expected search limit 20, got %d", config.Spotify.SearchLimit)
		}

		if creds := config.Credentials.Spotify; creds.ClientID != "" || creds.ClientSecret != "" {
			t.Errorf("expected empty spotify credentials, got %q/%q", creds.ClientID, creds.ClientSecret)
		}

		if config.Spotify.SearchesPerSecond != 5 {
			t.Errorf("expected 5 searches per second, got %v", config.Spotify.SearchesPerSecond)
		}

		if config.HTTP.Timeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", config.HTTP.Timeout())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[spotify]
username = "lauree"
public = true

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Spotify.Username != "lauree" || !config.Spotify.Public {
			t.Errorf("unexpected spotify section: %+v", config.Spotify)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected default server port to survive partial file, got %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig rejects invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SaveConfig round trips the token", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		if err := config.Credentials.Spotify.Update(&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       expiry,
		}); err != nil {
			t.Fatalf("failed to update token: %v", err)
		}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		token := loaded.Credentials.Spotify.Token()
		if token == nil {
			t.Fatal("expected token to be persisted")
		}
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token: %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}
	})

	t.Run("Token is nil before login", func(t *testing.T) {
		if DefaultConfig().Credentials.Spotify.Token() != nil {
			t.Error("expected nil token")
		}
	})

	t.Run("Update rejects empty token", func(t *testing.T) {
		var s SpotifyConfig
		if err := s.Update(&oauth2.Token{}); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
