package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	APIKey      string
	DataBaseURL string
	GeoBaseURL  string

	CacheBackend  string // "disk" or "memcached"
	CacheDir      string
	CacheTTL      time.Duration
	PruneInterval time.Duration // 0 disables the prune job

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	HistoryDBPath string
	HistoryLimit  int

	RequestTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		DataBaseURL string `yaml:"data_base_url"`
		GeoBaseURL  string `yaml:"geo_base_url"`
	} `yaml:"weather_api"`

	Cache struct {
		Backend       string `yaml:"backend"`
		Dir           string `yaml:"dir"`
		TTL           string `yaml:"ttl"`
		PruneInterval string `yaml:"prune_interval"`
		Memcached     struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	History struct {
		Path  string `yaml:"path"`
		Limit int    `yaml:"limit"`
	} `yaml:"history"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) plus env
// vars; a missing config file just means defaults. A .env file is honored via
// godotenv. The API key comes from OPENWEATHER_API_KEY (or legacy API_KEY) or
// config/secrets.yaml and is the one required setting.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.APIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("API_KEY")
	}
	if cfg.APIKey == "" {
		secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
		secretsData, err := os.ReadFile(secretsPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read secrets file: %w", err)
			}
		} else {
			var sec secretsFile
			if err := yaml.Unmarshal(secretsData, &sec); err != nil {
				return nil, fmt.Errorf("parse secrets file: %w", err)
			}
			cfg.APIKey = sec.OpenWeatherAPIKey
		}
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY required (set env, .env, or config/secrets.yaml openweather_api_key)")
	}

	cfg.DataBaseURL = fc.WeatherAPI.DataBaseURL
	cfg.GeoBaseURL = fc.WeatherAPI.GeoBaseURL

	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "disk"
	}
	cfg.CacheDir = fc.Cache.Dir
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultHomePath(".mysky_cache")
	}
	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 15*time.Minute)
	cfg.PruneInterval = parseDurationOrZero(fc.Cache.PruneInterval, time.Hour)

	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.HistoryDBPath = fc.History.Path
	if cfg.HistoryDBPath == "" {
		cfg.HistoryDBPath = defaultHomePath(".mysky_history.db")
	}
	cfg.HistoryLimit = fc.History.Limit
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}

	// Must exceed the slowest acquisition path: one-call deadline plus the
	// two fallback endpoint deadlines.
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 45*time.Second)

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 50
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultHomePath joins name onto the user home directory, falling back to
// the working directory when home cannot be resolved.
func defaultHomePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty
// string or parse error. Zero and negative values pass through so callers can
// treat them as "disabled".
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	switch cfg.CacheBackend {
	case "disk", "memcached":
		// valid
	default:
		return fmt.Errorf("cache.backend must be disk or memcached, got %q", cfg.CacheBackend)
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	return nil
}
