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

		if config.Database.Path != "./muzik.db" {
			t.Errorf("expected database path ./muzik.db, got %s", config.Database.Path)
		}

		if config.Catalog.BaseURL != "https://api.spotify.com/v1" {
			t.Errorf("expected catalog base URL, got %s", config.Catalog.BaseURL)
		}

		if config.Catalog.TimeoutSeconds != 30 {
			t.Errorf("expected 30s timeout, got %d", config.Catalog.TimeoutSeconds)
		}

		if config.Catalog.Configured() {
			t.Error("default config should not carry credentials")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
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

		testConfig := `[catalog]
client_id = "test_client_id"
client_secret = "test_secret"
max_retries = 5

[database]
path = "/custom/path.db"
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
		if config.Catalog.MaxRetries != 5 {
			t.Errorf("expected max_retries 5, got %d", config.Catalog.MaxRetries)
		}
		if config.Catalog.TokenURL != "https://accounts.spotify.com/api/token" {
			t.Errorf("expected missing keys to keep defaults, got token_url %q", config.Catalog.TokenURL)
		}
		if !config.Catalog.Configured() {
			t.Error("expected credentials to be configured")
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[catalog\nclient_id ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "sub", "config.toml")
		config := DefaultConfig()
		config.Catalog.ClientID = "saved_id"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Catalog.ClientID != "saved_id" {
			t.Errorf("expected client_id saved_id, got %s", loaded.Catalog.ClientID)
		}
	})
}

func TestConfigStore(t *testing.T) {
	t.Run("Get And Set Strings", func(t *testing.T) {
		config := DefaultConfig()

		if err := config.Set("catalog.client_id", "abc"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := config.Get("catalog.client_id")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "abc" {
			t.Errorf("expected abc, got %s", got)
		}
	})

	t.Run("Set Parses Integers And Booleans", func(t *testing.T) {
		config := DefaultConfig()

		if err := config.Set("catalog.max_retries", "7"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Catalog.MaxRetries != 7 {
			t.Errorf("expected 7, got %d", config.Catalog.MaxRetries)
		}

		if err := config.Set("display.colors", "false"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Display.Colors {
			t.Error("expected colors to be disabled")
		}

		if err := config.Set("catalog.max_retries", "many"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for bad integer, got %v", err)
		}
	})

	t.Run("Unknown Key", func(t *testing.T) {
		config := DefaultConfig()

		if _, err := config.Get("catalog.nope"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if err := config.Set("nope", "x"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Keys Are Sorted", func(t *testing.T) {
		keys := DefaultConfig().Keys()
		for i := 1; i < len(keys); i++ {
			if keys[i-1] > keys[i] {
				t.Fatalf("keys not sorted: %q before %q", keys[i-1], keys[i])
			}
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{
			"MUZIK_CLIENT_ID":     "env_id",
			"MUZIK_CLIENT_SECRET": "env_secret",
		}
		config.ApplyEnv(func(k string) string { return env[k] })

		if !config.Catalog.Configured() {
			t.Error("expected env credentials to configure the catalog")
		}
		if config.Logging.Level != "info" {
			t.Errorf("expected untouched log level, got %s", config.Logging.Level)
		}
	})
}

func TestCatalogToken(t *testing.T) {
	t.Run("UpdateToken And Token", func(t *testing.T) {
		var c CatalogConfig
		expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

		if err := c.UpdateToken(&oauth2.Token{AccessToken: "tok", Expiry: expiry}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		token := c.Token()
		if token == nil {
			t.Fatal("expected token to be restored")
		}
		if token.AccessToken != "tok" {
			t.Errorf("expected access token tok, got %s", token.AccessToken)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}
	})

	t.Run("Empty Token Rejected", func(t *testing.T) {
		var c CatalogConfig
		if err := c.UpdateToken(&oauth2.Token{}); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if c.Token() != nil {
			t.Error("expected no token")
		}
	})

	t.Run("ClearCredentials", func(t *testing.T) {
		c := CatalogConfig{ClientID: "a", ClientSecret: "b", AccessToken: "c"}
		c.ClearCredentials()
		if c.Configured() || c.Token() != nil {
			t.Error("expected credentials and token to be cleared")
		}
	})
}
