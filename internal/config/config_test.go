package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAuthURL, "")
	t.Setenv(EnvAuthKey, "")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if cfg.APIURL == "" {
		t.Error("expected api_url to be set")
	}
	if cfg.Auth.Provider != "github" {
		t.Errorf("expected default provider github, got %q", cfg.Auth.Provider)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults should validate: %v", err)
	}
}

func TestRetentionDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"90d", 90},
		{"30d", 30},
		{"720h", 30},
		{"", 90},        // default
		{"invalid", 90}, // fallback to default
	}
	for _, tt := range tests {
		cfg := &Config{Retention: tt.input}
		got := cfg.RetentionDuration()
		wantHours := float64(tt.wantDays * 24)
		if got.Hours() != wantHours {
			t.Errorf("RetentionDuration(%q) = %v, want %dd", tt.input, got, tt.wantDays)
		}
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"7d", false},
		{"36h", false},
		{"0d", true},
		{"-5m", true},
		{"soon", true},
	}
	for _, tt := range tests {
		_, err := ParseDays(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDays(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestPageSizeDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetPageSize(); got != 20 {
		t.Errorf("expected default page size 20, got %d", got)
	}
	cfg.PageSize = 50
	if got := cfg.GetPageSize(); got != 50 {
		t.Errorf("expected page size 50, got %d", got)
	}
}

func TestTrendingLimitDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetTrendingLimit(); got != 5 {
		t.Errorf("expected default trending limit 5, got %d", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `api_url: http://localhost:8080/api/v1
page_size: 10
auth:
  provider: google
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080/api/v1" {
		t.Errorf("expected local api url, got %s", cfg.APIURL)
	}
	if cfg.GetPageSize() != 10 {
		t.Errorf("expected page size 10, got %d", cfg.GetPageSize())
	}
	if cfg.Auth.Provider != "google" {
		t.Errorf("expected provider google, got %s", cfg.Auth.Provider)
	}
	// Unset fields come from the defaults
	if cfg.Auth.URL == "" || cfg.Retention == "" {
		t.Errorf("expected defaults merged, got %+v", cfg)
	}
}

func TestLoadNonexistentWritesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL == "" {
		t.Error("expected default api url when config doesn't exist")
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults written to %s: %v", cfgPath, err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "https://staging.example.com/api/v1")
	t.Setenv(EnvAuthKey, "env-key")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("auth:\n  anon_key: file-key\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://staging.example.com/api/v1" {
		t.Errorf("expected env api url, got %s", cfg.APIURL)
	}
	if cfg.AuthKey() != "env-key" {
		t.Errorf("expected env key to win, got %s", cfg.AuthKey())
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{APIURL: "https://a.example", Auth: AuthConfig{URL: "https://b.example", Provider: "github"}}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api url", func(c *Config) { c.APIURL = "" }, "api_url is required"},
		{"bad scheme", func(c *Config) { c.Auth.URL = "ftp://b.example" }, "auth.url: url scheme"},
		{"bad provider", func(c *Config) { c.Auth.Provider = "myspace" }, "auth.provider"},
		{"page size", func(c *Config) { c.PageSize = 500 }, "page_size"},
		{"retention", func(c *Config) { c.Retention = "forever" }, "retention"},
		{"color", func(c *Config) { c.Color = "rainbow" }, "color"},
	}
	for _, tt := range tests {
		cfg := valid()
		tt.mutate(cfg)
		err := validate(cfg)
		if tt.want == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}
