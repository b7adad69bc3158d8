package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Display  DisplayConfig  `toml:"display"`
}

// CatalogConfig contains catalog service credentials, persisted tokens and transport tuning.
type CatalogConfig struct {
	ClientID          string `toml:"client_id"`
	ClientSecret      string `toml:"client_secret"`
	AccessToken       string `toml:"access_token"`
	RefreshToken      string `toml:"refresh_token"`
	TokenExpiry       string `toml:"token_expiry"` // RFC 3339
	BaseURL           string `toml:"base_url"`
	TokenURL          string `toml:"token_url"`
	Market            string `toml:"market"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxRetries        int    `toml:"max_retries"`
	RequestsPerSecond int    `toml:"requests_per_second"`
}

// DatabaseConfig contains library database settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig contains log level and destination for the interactive session.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DisplayConfig contains rendering preferences.
type DisplayConfig struct {
	Colors bool `toml:"colors"`
}

// Configured reports whether both client credentials are present.
func (c CatalogConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Token rebuilds the persisted [oauth2.Token], or nil when none is stored.
func (c CatalogConfig) Token() *oauth2.Token {
	if c.AccessToken == "" {
		return nil
	}

	token := &oauth2.Token{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken, TokenType: "Bearer"}
	if expiry, err := time.Parse(time.RFC3339, c.TokenExpiry); err == nil {
		token.Expiry = expiry
	}
	return token
}

// UpdateToken stores a freshly issued token.
func (c *CatalogConfig) UpdateToken(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}

	c.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		c.RefreshToken = token.RefreshToken
	}
	c.TokenExpiry = ""
	if !token.Expiry.IsZero() {
		c.TokenExpiry = token.Expiry.UTC().Format(time.RFC3339)
	}
	return nil
}

// ClearCredentials removes client credentials and persisted tokens.
func (c *CatalogConfig) ClearCredentials() {
	c.ClientID = ""
	c.ClientSecret = ""
	c.AccessToken = ""
	c.RefreshToken = ""
	c.TokenExpiry = ""
}

// Timeout returns the per-request timeout, defaulting to 30s.
func (c CatalogConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// fields maps dot paths to pointers into the config struct.
func (c *Config) fields() map[string]any {
	return map[string]any{
		"catalog.client_id":           &c.Catalog.ClientID,
		"catalog.client_secret":       &c.Catalog.ClientSecret,
		"catalog.access_token":        &c.Catalog.AccessToken,
		"catalog.refresh_token":       &c.Catalog.RefreshToken,
		"catalog.token_expiry":        &c.Catalog.TokenExpiry,
		"catalog.base_url":            &c.Catalog.BaseURL,
		"catalog.token_url":           &c.Catalog.TokenURL,
		"catalog.market":              &c.Catalog.Market,
		"catalog.timeout_seconds":     &c.Catalog.TimeoutSeconds,
		"catalog.max_retries":         &c.Catalog.MaxRetries,
		"catalog.requests_per_second": &c.Catalog.RequestsPerSecond,
		"database.path":               &c.Database.Path,
		"logging.level":               &c.Logging.Level,
		"logging.file":                &c.Logging.File,
		"display.colors":              &c.Display.Colors,
	}
}

// Keys returns every dot path accepted by [Config.Get] and [Config.Set], sorted.
func (c *Config) Keys() []string {
	fields := c.fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get reads a value by dot path (e.g. "catalog.client_id") formatted as a string.
func (c *Config) Get(path string) (string, error) {
	ptr, ok := c.fields()[path]
	if !ok {
		return "", fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, path)
	}

	switch v := ptr.(type) {
	case *string:
		return *v, nil
	case *int:
		return strconv.Itoa(*v), nil
	case *bool:
		return strconv.FormatBool(*v), nil
	}
	return "", fmt.Errorf("%w: unsupported type for %q", ErrInvalidConfig, path)
}

// Set writes a value by dot path, parsing it into the field's type.
func (c *Config) Set(path, value string) error {
	ptr, ok := c.fields()[path]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, path)
	}

	switch v := ptr.(type) {
	case *string:
		*v = value
	case *int:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer: %v", ErrInvalidConfig, path, err)
		}
		*v = n
	case *bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects a boolean: %v", ErrInvalidConfig, path, err)
		}
		*v = b
	}
	return nil
}

// ApplyEnv overrides credentials and log level from MUZIK_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("MUZIK_CLIENT_ID"); v != "" {
		c.Catalog.ClientID = v
	}
	if v := getenv("MUZIK_CLIENT_SECRET"); v != "" {
		c.Catalog.ClientSecret = v
	}
	if v := getenv("MUZIK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadOrDefault loads the config at path when it exists, otherwise returns defaults.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// SaveConfig writes the configuration to path as TOML, creating parent directories.
func SaveConfig(path string, config *Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
