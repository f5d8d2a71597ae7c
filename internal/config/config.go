// Package config loads popcorn's settings from ~/.popcorn/config.json and
// the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is the persistent application configuration
type Config struct {
	OMDb   OMDbConfig   `json:"omdb"`
	Search SearchConfig `json:"search"`
	UI     UIConfig     `json:"ui"`
}

// OMDbConfig holds the remote API settings. Fixed for the life of the process.
type OMDbConfig struct {
	APIKey            string  `json:"api_key,omitempty"`
	Endpoint          string  `json:"endpoint"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// SearchConfig tunes when a query turns into a request.
type SearchConfig struct {
	MinQueryLength int `json:"min_query_length"`
	DebounceMs     int `json:"debounce_ms"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	EventLog bool `json:"event_log"` // write events.jsonl next to the config
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OMDb: OMDbConfig{
			Endpoint:          "https://www.omdbapi.com/",
			TimeoutSeconds:    10,
			RequestsPerSecond: 5,
		},
		Search: SearchConfig{
			MinQueryLength: 3,
			DebounceMs:     250,
		},
		UI: UIConfig{
			EventLog: true,
		},
	}
}

// Dir returns the popcorn home directory (~/.popcorn).
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".popcorn")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from disk, or returns defaults. Environment variables
// override file values.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			cfg = DefaultConfig()
		}
	}

	cfg.AutoPopulateFromEnv()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // holds the API key
}

// AutoPopulateFromEnv applies OMDB_API_KEY, OMDB_ENDPOINT and
// POPCORN_DEBOUNCE_MS when set.
func (c *Config) AutoPopulateFromEnv() {
	for _, key := range []string{"OMDB_API_KEY", "OMDB_ENDPOINT", "POPCORN_DEBOUNCE_MS"} {
		if v := os.Getenv(key); v != "" {
			c.apply(key, v)
		}
	}
}

// LoadKeysFromFile loads settings from a shell script of export KEY=value lines.
func (c *Config) LoadKeysFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		c.apply(strings.TrimSpace(key), strings.Trim(strings.TrimSpace(value), `"'`))
	}
	return nil
}

func (c *Config) apply(key, value string) {
	switch key {
	case "OMDB_API_KEY":
		c.OMDb.APIKey = value
	case "OMDB_ENDPOINT":
		c.OMDb.Endpoint = value
	case "POPCORN_DEBOUNCE_MS":
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			c.Search.DebounceMs = n
		}
	}
}

// Validate reports the first setting that would make the app misbehave.
// A missing API key is not an error here; callers decide how to handle it.
func (c *Config) Validate() error {
	u, err := url.Parse(c.OMDb.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: omdb.endpoint %q must be an absolute URL", c.OMDb.Endpoint)
	}
	if c.OMDb.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: omdb.timeout_seconds must be positive, got %d", c.OMDb.TimeoutSeconds)
	}
	if c.OMDb.RequestsPerSecond <= 0 {
		return fmt.Errorf("config: omdb.requests_per_second must be positive, got %v", c.OMDb.RequestsPerSecond)
	}
	if c.Search.MinQueryLength < 1 {
		return fmt.Errorf("config: search.min_query_length must be at least 1, got %d", c.Search.MinQueryLength)
	}
	if c.Search.DebounceMs < 0 {
		return fmt.Errorf("config: search.debounce_ms must not be negative, got %d", c.Search.DebounceMs)
	}
	return nil
}

// Timeout is the per-request OMDb timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.OMDb.TimeoutSeconds) * time.Second
}

// Debounce is the delay between the last keystroke and the search request.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Search.DebounceMs) * time.Millisecond
}
