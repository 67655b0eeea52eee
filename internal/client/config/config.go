package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/iamclient/internal/common"
)

// Config holds runtime settings for the IAM CLI.
//
// Env tags are read by cleanenv; only variables that are actually set
// override the value already in place.
type Config struct {
	BaseURL          string        `env:"IAM_BASE_URL"`
	RefreshPath      string        `env:"IAM_REFRESH_PATH"`
	RequestTimeout   time.Duration `env:"IAM_REQUEST_TIMEOUT"`
	RefreshThreshold time.Duration `env:"IAM_REFRESH_THRESHOLD"`
	StatePath        string        `env:"IAM_STATE_PATH"`
	StatePassphrase  string        `env:"IAM_STATE_PASSPHRASE"`
	LogLevel         string        `env:"IAM_LOG_LEVEL"`
	LogFormat        string        `env:"IAM_LOG_FORMAT"`
	MetricsAddr      string        `env:"IAM_METRICS_ADDR"`
}

// LoadDefaults populates c with defaults suitable for a local backend.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:8080/api/v1"
	c.RefreshPath = common.PathRefresh
	c.RequestTimeout = common.DefaultRequestTimeout
	c.RefreshThreshold = 0
	c.StatePath = "iamclient.db"
	c.StatePassphrase = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.MetricsAddr = ""
}

// LoadConfig builds a Config from defaults, the config file, the environment
// and flags, in that order.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// MustLoad is LoadConfig that panics on error.
func MustLoad() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}
