package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	EnvAPIURL  = "ZYYP_API_URL"
	EnvAuthURL = "ZYYP_AUTH_URL"
	EnvAuthKey = "ZYYP_AUTH_KEY"
)

type AuthConfig struct {
	URL      string `yaml:"url"`
	AnonKey  string `yaml:"anon_key"`
	Provider string `yaml:"provider"` // "github" or "google"
}

type Config struct {
	APIURL        string     `yaml:"api_url"`
	Auth          AuthConfig `yaml:"auth"`
	PageSize      int        `yaml:"page_size,omitempty"`
	TrendingLimit int        `yaml:"trending_limit,omitempty"`
	Retention     string     `yaml:"retention"`
	LogLevel      string     `yaml:"log_level,omitempty"`
	Color         string     `yaml:"color,omitempty"`
}

var validProviders = map[string]bool{"github": true, "google": true}

// AuthKey returns the anon key, preferring the environment.
func (c *Config) AuthKey() string {
	if v := os.Getenv(EnvAuthKey); v != "" {
		return v
	}
	return c.Auth.AnonKey
}

func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 90 * 24 * time.Hour
	}
	d, err := ParseDays(c.Retention)
	if err != nil {
		return 90 * 24 * time.Hour
	}
	return d
}

// ParseDays accepts Go durations plus an "Nd" day suffix.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

// GetPageSize returns the feed page size, defaulting to 20.
func (c *Config) GetPageSize() int {
	if c.PageSize <= 0 {
		return 20
	}
	return c.PageSize
}

// GetTrendingLimit returns how many trending articles to show, defaulting to 5.
func (c *Config) GetTrendingLimit() int {
	if c.TrendingLimit <= 0 {
		return 5
	}
	return c.TrendingLimit
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "zyyp", "config.yaml")
}

// DBPath is the local store holding the session and reading history.
func DBPath() string {
	return filepath.Join(xdg.DataHome, "zyyp", "zyyp.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Non-fatal: the embedded defaults still apply
		_ = writeDefaults(path)
		applyEnv(defaults)
		return defaults, validate(defaults)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaults(&cfg, defaults)
	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeDefaults fills fields the user left empty.
func mergeDefaults(cfg, defaults *Config) {
	if cfg.APIURL == "" {
		cfg.APIURL = defaults.APIURL
	}
	if cfg.Auth.URL == "" {
		cfg.Auth.URL = defaults.Auth.URL
	}
	if cfg.Auth.Provider == "" {
		cfg.Auth.Provider = defaults.Auth.Provider
	}
	if cfg.Retention == "" {
		cfg.Retention = defaults.Retention
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.Color == "" {
		cfg.Color = defaults.Color
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvAuthURL); v != "" {
		cfg.Auth.URL = v
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if err := validateURL("api_url", cfg.APIURL); err != nil {
		return err
	}
	if err := validateURL("auth.url", cfg.Auth.URL); err != nil {
		return err
	}
	if !validProviders[cfg.Auth.Provider] {
		return fmt.Errorf("auth.provider: unknown provider %q (valid: github, google)", cfg.Auth.Provider)
	}
	if cfg.PageSize < 0 || cfg.PageSize > 100 {
		return fmt.Errorf("page_size: must be between 1 and 100, got %d", cfg.PageSize)
	}
	if cfg.TrendingLimit < 0 {
		return fmt.Errorf("trending_limit: must be positive, got %d", cfg.TrendingLimit)
	}
	if cfg.Retention != "" {
		if _, err := ParseDays(cfg.Retention); err != nil {
			return fmt.Errorf("retention: %w", err)
		}
	}
	switch cfg.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("color: must be auto, always, or never, got %q", cfg.Color)
	}
	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", field, u.Scheme)
	}
	return nil
}
