package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad_Defaults verifies that with only the API key set, every other
// setting falls back to its default.
func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENWEATHER_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", cfg.APIKey)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.CacheBackend != "disk" {
		t.Errorf("CacheBackend = %q, want disk", cfg.CacheBackend)
	}
	if cfg.CacheTTL != 15*time.Minute {
		t.Errorf("CacheTTL = %v, want 15m", cfg.CacheTTL)
	}
	if cfg.PruneInterval != time.Hour {
		t.Errorf("PruneInterval = %v, want 1h", cfg.PruneInterval)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v, want 45s", cfg.RequestTimeout)
	}
	if cfg.RateLimitRPS != 50 || cfg.RateLimitBurst != 100 {
		t.Errorf("rate limit = %d/%d, want 50/100", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

// TestLoad_MissingAPIKey verifies that the key is the one required setting.
func TestLoad_MissingAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want missing API key error")
	}
}

// TestLoad_LegacyKeyEnv verifies the API_KEY fallback.
func TestLoad_LegacyKeyEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "legacy-key" {
		t.Errorf("APIKey = %q, want legacy-key", cfg.APIKey)
	}
}

// TestLoad_SecretsFile verifies the key can come from config/secrets.yaml.
func TestLoad_SecretsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("API_KEY", "")
	writeFile(t, filepath.Join(dir, "config", "secrets.yaml"), "openweather_api_key: file-key\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file-key", cfg.APIKey)
	}
}

// TestLoad_ConfigFile verifies YAML settings override the defaults.
func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("ENV_NAME", "prod")
	writeFile(t, filepath.Join(dir, "config", "prod.yaml"), `
server:
  port: "9090"
cache:
  backend: memcached
  ttl: 5m
  prune_interval: 0s
  memcached:
    addrs: "cache1:11211,cache2:11211"
history:
  limit: 10
request:
  timeout: 30s
reliability:
  rate_limit_rps: 5
  rate_limit_burst: 10
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.CacheBackend != "memcached" {
		t.Errorf("CacheBackend = %q, want memcached", cfg.CacheBackend)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.PruneInterval != 0 {
		t.Errorf("PruneInterval = %v, want 0 (disabled)", cfg.PruneInterval)
	}
	if cfg.MemcachedAddrs != "cache1:11211,cache2:11211" {
		t.Errorf("MemcachedAddrs = %q", cfg.MemcachedAddrs)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("HistoryLimit = %d, want 10", cfg.HistoryLimit)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 10 {
		t.Errorf("rate limit = %d/%d, want 5/10", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

// TestLoad_InvalidBackend verifies validation of the cache backend value.
func TestLoad_InvalidBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("CACHE_BACKEND", "redis")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want invalid backend error")
	}
}

// TestParseDuration covers defaulting behavior.
func TestParseDuration(t *testing.T) {
	if got := parseDuration("", time.Minute); got != time.Minute {
		t.Errorf("parseDuration(\"\") = %v, want default", got)
	}
	if got := parseDuration("garbage", time.Minute); got != time.Minute {
		t.Errorf("parseDuration(garbage) = %v, want default", got)
	}
	if got := parseDuration("90s", time.Minute); got != 90*time.Second {
		t.Errorf("parseDuration(90s) = %v, want 90s", got)
	}
	if got := parseDuration("0s", time.Minute); got != time.Minute {
		t.Errorf("parseDuration(0s) = %v, want default for non-positive", got)
	}
	if got := parseDurationOrZero("0s", time.Minute); got != 0 {
		t.Errorf("parseDurationOrZero(0s) = %v, want 0", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
