package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Config holds every tunable of the hubscout client and its front
// ends. Missing values fall back to the documented defaults on load.
type Config struct {
	// Token authenticates against the GitHub API. When empty the
	// credential store, then the GITHUB_TOKEN environment variable,
	// are consulted instead.
	Token string `toml:"token,omitempty"`

	// BaseURL overrides the API endpoint. Mostly useful for GitHub
	// Enterprise or tests.
	BaseURL string `toml:"base_url,omitempty"`

	// CredentialsPath is the SQLite credential store location.
	// Defaults to <data dir>/credentials.db.
	CredentialsPath string `toml:"credentials_path,omitempty"`

	Timeout         Duration `toml:"timeout"`
	SearchCacheTTL  Duration `toml:"search_cache_ttl"`
	ProfileCacheTTL Duration `toml:"profile_cache_ttl"`

	EnrichLimit   int      `toml:"enrich_limit"`
	BatchSize     int      `toml:"batch_size"`
	BatchInterval Duration `toml:"batch_interval"`

	RateLimitBuffer int `toml:"rate_limit_buffer"`
	EnrichBuffer    int `toml:"enrich_buffer"`

	// SupersedePrevious makes a new search cancel whatever is still
	// in flight from the previous one.
	SupersedePrevious bool `toml:"supersede_previous"`

	PerPage int `toml:"per_page"`

	// ListenAddr is used by the serve command.
	ListenAddr string `toml:"listen_addr"`
}

// Duration wraps time.Duration for TOML round-tripping ("1.2s", "5m").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:         Duration{12 * time.Second},
		SearchCacheTTL:  Duration{5 * time.Minute},
		ProfileCacheTTL: Duration{2 * time.Minute},
		EnrichLimit:     30,
		BatchSize:       4,
		BatchInterval:   Duration{1200 * time.Millisecond},
		RateLimitBuffer: 3,
		EnrichBuffer:    5,
		PerPage:         10,
		ListenAddr:      ":8099",
	}
}

// LoadConfig reads configPath, applying defaults for anything unset.
// A missing file yields the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	config.applyDefaults()

	return config, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Timeout.Duration <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.SearchCacheTTL.Duration <= 0 {
		c.SearchCacheTTL = defaults.SearchCacheTTL
	}
	if c.ProfileCacheTTL.Duration <= 0 {
		c.ProfileCacheTTL = defaults.ProfileCacheTTL
	}
	if c.EnrichLimit <= 0 {
		c.EnrichLimit = defaults.EnrichLimit
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.BatchInterval.Duration <= 0 {
		c.BatchInterval = defaults.BatchInterval
	}
	if c.RateLimitBuffer <= 0 {
		c.RateLimitBuffer = defaults.RateLimitBuffer
	}
	if c.EnrichBuffer <= 0 {
		c.EnrichBuffer = defaults.EnrichBuffer
	}
	if c.PerPage <= 0 {
		c.PerPage = defaults.PerPage
	}
	if c.ListenAddr == "" {
		c.ListenAddr = defaults.ListenAddr
	}
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the annotated sample configuration, used by
// the init command.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, []byte(configTemplate), 0644)
}

// GetDefaultDataDir returns the directory for the credential store,
// honoring XDG_DATA_HOME.
func GetDefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "hubscout")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultCredentialsPath returns the default credential store path.
func GetDefaultCredentialsPath() (string, error) {
	dataDir, err := GetDefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "credentials.db"), nil
}

// GetConfigDir returns the configuration directory, honoring
// XDG_CONFIG_HOME.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "hubscout")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
