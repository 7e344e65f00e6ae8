package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type Server struct {
	Port              string `toml:"port"`
	RequestTimeoutSec int    `toml:"request_timeout_sec"`
}

type Provider struct {
	BaseURL               string `toml:"base_url"`
	APIKey                string `toml:"api_key"`
	PrimaryCurrency       string `toml:"primary_currency"`
	TimeoutSec            int    `toml:"timeout_sec"`
	MaxRequestsPerMinute  int    `toml:"max_requests_per_minute"`
	MinRequestIntervalSec int    `toml:"min_request_interval_sec"`
	Burst                 int    `toml:"burst"`
}

// Timeout is the deadline applied to one batched price request.
func (p Provider) Timeout() time.Duration {
	if p.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.TimeoutSec) * time.Second
}

type Conversion struct {
	SecondaryCurrency string  `toml:"secondary_currency"`
	Rate              float64 `toml:"rate"`
}

type Storage struct {
	CachePath   string `toml:"cache_path"`
	HistoryPath string `toml:"history_path"`
	HoldingsDB  string `toml:"holdings_db"`
}

type History struct {
	MaxSamples int `toml:"max_samples"`
}

type Logging struct {
	Level string `toml:"level"`
}

type Config struct {
	Server     Server     `toml:"server"`
	Provider   Provider   `toml:"provider"`
	Conversion Conversion `toml:"conversion"`
	Storage    Storage    `toml:"storage"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 15},
		Provider: Provider{
			BaseURL:              "https://api.coingecko.com/api/v3",
			PrimaryCurrency:      "usd",
			TimeoutSec:           10,
			MaxRequestsPerMinute: 30,
			Burst:                1,
		},
		Conversion: Conversion{SecondaryCurrency: "INR", Rate: 83},
		Storage: Storage{
			CachePath:   "data/price_cache.json",
			HistoryPath: "data/portfolio_history.json",
			HoldingsDB:  "data/users.db",
		},
		History: History{MaxSamples: 5000},
		Logging: Logging{Level: "info"},
	}
}

// Load reads TOML config from path. If path is empty or the file does not exist,
// it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("cointether.toml"); err == nil {
			path = "cointether.toml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if c.Conversion.Rate <= 0 {
		return fmt.Errorf("conversion.rate must be positive, got %v", c.Conversion.Rate)
	}
	if strings.TrimSpace(c.Provider.BaseURL) == "" {
		return errors.New("provider.base_url is required")
	}
	if c.History.MaxSamples < 0 {
		return fmt.Errorf("history.max_samples must be >= 0, got %d", c.History.MaxSamples)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COINTETHER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("COINTETHER_REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}
	if v := os.Getenv("COINTETHER_PROVIDER_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("COINTETHER_PRIMARY_CURRENCY"); v != "" {
		cfg.Provider.PrimaryCurrency = strings.ToLower(v)
	}
	if x, ok := envInt("COINTETHER_PROVIDER_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Provider.TimeoutSec = x
	}
	if x, ok := envInt("COINTETHER_PROVIDER_MAX_RPM"); ok && x >= 0 {
		cfg.Provider.MaxRequestsPerMinute = x
	}
	if x, ok := envInt("COINTETHER_PROVIDER_MIN_INTERVAL_SEC"); ok && x >= 0 {
		cfg.Provider.MinRequestIntervalSec = x
	}
	if x, ok := envInt("COINTETHER_PROVIDER_BURST"); ok && x > 0 {
		cfg.Provider.Burst = x
	}
	if v := os.Getenv("COINTETHER_SECONDARY_CURRENCY"); v != "" {
		cfg.Conversion.SecondaryCurrency = strings.ToUpper(v)
	}
	if v := os.Getenv("COINTETHER_CONVERSION_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Conversion.Rate = f
		}
	}
	if v := os.Getenv("COINTETHER_CACHE_PATH"); v != "" {
		cfg.Storage.CachePath = v
	}
	if v := os.Getenv("COINTETHER_HISTORY_PATH"); v != "" {
		cfg.Storage.HistoryPath = v
	}
	if v := os.Getenv("COINTETHER_HOLDINGS_DB"); v != "" {
		cfg.Storage.HoldingsDB = v
	}
	if x, ok := envInt("COINTETHER_HISTORY_MAX_SAMPLES"); ok && x >= 0 {
		cfg.History.MaxSamples = x
	}
	if v := os.Getenv("COINTETHER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return x, true
}
