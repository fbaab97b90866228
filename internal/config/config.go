package config

import (
	"errors"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Published sheet exports used when no URL is configured.
const (
	DefaultMainURL    = "https://docs.google.com/spreadsheets/d/1lFHQO8f33dK2W9tDbg0_74_0fddNU449ooAy-WuHdvg/export?format=csv&gid=1945963055"
	DefaultMetricsURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vR38uKjMSWxeJhhRHl2Up9EA3BnrQgq7ERItdJBbM4BlHDX9JNFS9afc1jvgqmONMKz_U0Tw-IiDxJ-/pub?gid=1542097113&single=true&output=csv"
)

// Config holds the full application configuration.
type Config struct {
	Feeds   FeedsConfig   `yaml:"feeds" mapstructure:"feeds"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Circuit CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// FeedsConfig holds the two published sheets.
type FeedsConfig struct {
	Main    FeedConfig `yaml:"main" mapstructure:"main"`
	Metrics FeedConfig `yaml:"metrics" mapstructure:"metrics"`
}

// FeedConfig locates one published CSV export.
type FeedConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	CacheBustParam string `yaml:"cache_bust_param" mapstructure:"cache_bust_param"`
	SchemaPath     string `yaml:"schema_path" mapstructure:"schema_path"`
}

// FetchConfig configures HTTP downloads.
type FetchConfig struct {
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	// MaxRetries counts retries after the first attempt.
	MaxRetries       int     `yaml:"max_retries" mapstructure:"max_retries"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// CircuitConfig configures the per-feed circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	OutputPath string `yaml:"output_path" mapstructure:"output_path"`
}

// Load reads configuration from .env, config.yaml and the environment.
// Environment variables use the DASHBOARD_ prefix (DASHBOARD_FEEDS_MAIN_URL).
func Load() (*Config, error) {
	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("feeds.main.url", DefaultMainURL)
	v.SetDefault("feeds.main.cache_bust_param", "_")
	v.SetDefault("feeds.main.schema_path", "")
	v.SetDefault("feeds.metrics.url", DefaultMetricsURL)
	v.SetDefault("feeds.metrics.cache_bust_param", "timestamp")
	v.SetDefault("feeds.metrics.schema_path", "")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.initial_backoff_ms", 500)
	v.SetDefault("fetch.max_backoff_ms", 30000)
	v.SetDefault("fetch.user_agent", "plant-dashboard/1.0")
	v.SetDefault("fetch.rate_per_sec", 2.0)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stderr")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the values the dashboard cannot run without.
func (c *Config) Validate() error {
	feeds := []struct {
		name string
		cfg  FeedConfig
	}{{"main", c.Feeds.Main}, {"metrics", c.Feeds.Metrics}}
	for _, f := range feeds {
		name := f.name
		if f.cfg.URL == "" {
			return eris.Errorf("config: feeds.%s.url is required", name)
		}
		u, err := url.Parse(f.cfg.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return eris.Errorf("config: feeds.%s.url must be an http(s) URL, got %q", name, f.cfg.URL)
		}
	}
	if c.Fetch.TimeoutSecs <= 0 {
		return eris.New("config: fetch.timeout_secs must be positive")
	}
	if c.Fetch.MaxRetries < 1 {
		return eris.New("config: fetch.max_retries must be at least 1")
	}
	if c.Fetch.InitialBackoffMs < 0 || c.Fetch.MaxBackoffMs < 0 {
		return eris.New("config: fetch backoff must not be negative")
	}
	if c.Fetch.RatePerSec <= 0 {
		return eris.New("config: fetch.rate_per_sec must be positive")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	if cfg.OutputPath != "" {
		zapCfg.OutputPaths = []string{cfg.OutputPath}
		zapCfg.ErrorOutputPaths = []string{cfg.OutputPath}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
