// Package config handles the punch clock agent's TOML configuration file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config represents the main configuration for the punch clock agent.
type Config struct {
	Server   ServerConfig   `toml:"server" validate:"required"`
	Cache    CacheConfig    `toml:"cache"`
	Geo      GeoConfig      `toml:"geo"`
	Sync     SyncConfig     `toml:"sync"`
	Identity IdentityConfig `toml:"identity"`
}

// ServerConfig points the agent at the sync backend.
type ServerConfig struct {
	URL            string `toml:"url" validate:"required,url"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=0"`
}

// CacheConfig holds the local document cache location.
type CacheConfig struct {
	Path string `toml:"path"`
}

// GeoConfig holds the position feed settings.
type GeoConfig struct {
	FeedPath       string `toml:"feed_path"`
	PollIntervalMS int    `toml:"poll_interval_ms" validate:"gte=0"`
}

// SyncConfig holds push debounce and pull polling overrides.
// Zero values mean "use the built-in defaults".
type SyncConfig struct {
	DebounceMS  int    `toml:"debounce_ms" validate:"gte=0"`
	PullSeconds int    `toml:"pull_seconds" validate:"gte=0"`
	DocumentKey string `toml:"document_key"`
}

// IdentityConfig is who this agent punches as. It is written by the
// login command after the autologin token has been exchanged; the token
// itself is never stored.
type IdentityConfig struct {
	OrgID      string `toml:"org_id"`
	EmployeeID string `toml:"employee_id"`
	Name       string `toml:"name"`
	Role       string `toml:"role"`
	CanPunch   bool   `toml:"can_punch"`
}

// NewConfig creates a Config with the provided server URL and default paths
// under baseDir.
func NewConfig(serverURL, baseDir string) *Config {
	return &Config{
		Server: ServerConfig{
			URL:            serverURL,
			TimeoutSeconds: 15,
		},
		Cache: CacheConfig{
			Path: filepath.Join(baseDir, "cache.json"),
		},
		Geo: GeoConfig{
			FeedPath:       filepath.Join(baseDir, "position.jsonl"),
			PollIntervalMS: 500,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "ponto_vivo", "config.toml"), nil
}

// Manager handles reading, validating and writing configuration.
type Manager struct {
	validate *validator.Validate
}

// NewManager creates a Manager with a fresh validator instance.
func NewManager() *Manager {
	return &Manager{validate: validator.New()}
}

// Read decodes and validates a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := m.validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := NewManager()
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// WriteToFile writes a Config to the specified file path, creating the
// parent directory when needed.
func WriteToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := NewManager()
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := WriteToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
