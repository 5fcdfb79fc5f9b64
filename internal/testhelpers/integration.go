//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/myskyapp/mysky-service/internal/cache"
	"github.com/myskyapp/mysky-service/internal/client"
	"github.com/myskyapp/mysky-service/internal/service"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey        string
	DataBaseURL   string
	GeoBaseURL    string
	CacheBackend  string // "disk" or "memcached"
	MemcachedAddr string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test if OPENWEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("OPENWEATHER_API_KEY not set, skipping integration test")
	}

	memcachedAddr := os.Getenv("MEMCACHED_ADDRS")
	if memcachedAddr == "" {
		memcachedAddr = "localhost:11211"
	}

	return IntegrationTestConfig{
		APIKey:        apiKey,
		DataBaseURL:   os.Getenv("OPENWEATHER_DATA_URL"),
		GeoBaseURL:    os.Getenv("OPENWEATHER_GEO_URL"),
		CacheBackend:  os.Getenv("INTEGRATION_CACHE_BACKEND"),
		MemcachedAddr: memcachedAddr,
	}
}

// SetupIntegrationService creates a fully configured forecast service for
// integration tests. Returns the service, its cache, and a cleanup function.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) (*service.ForecastService, cache.Store, func()) {
	api := SetupIntegrationClient(t, cfg)

	var store cache.Store
	cleanup := func() {}

	if cfg.CacheBackend == "memcached" {
		memcachedCache, err := cache.NewMemcachedCache(cfg.MemcachedAddr, time.Minute, 500*time.Millisecond, 2)
		if err == nil && memcachedCache.Ping() == nil {
			store = memcachedCache
			cleanup = func() { memcachedCache.Close() }
			t.Logf("Using memcached cache at %s", cfg.MemcachedAddr)
		} else {
			t.Logf("Memcached not available, using disk cache")
		}
	}
	if store == nil {
		disk, err := cache.NewDiskCache(t.TempDir(), time.Minute)
		if err != nil {
			t.Fatalf("NewDiskCache() error = %v", err)
		}
		store = disk
	}

	return service.NewForecastService(api, store, zap.NewNop()), store, cleanup
}

// SetupIntegrationClient creates a weather client for integration tests.
func SetupIntegrationClient(t *testing.T, cfg IntegrationTestConfig) client.WeatherAPI {
	api, err := client.NewOpenWeatherClient(client.Config{
		APIKey:      cfg.APIKey,
		DataBaseURL: cfg.DataBaseURL,
		GeoBaseURL:  cfg.GeoBaseURL,
	})
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return api
}
