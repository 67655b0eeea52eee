package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/iamclient/internal/flagx"
	"github.com/dmitrijs2005/iamclient/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. It exists only for
// decoding; zero values leave the corresponding Config field untouched.
type FileConfig struct {
	BaseURL          string         `json:"base_url" yaml:"base_url"`
	RefreshPath      string         `json:"refresh_path" yaml:"refresh_path"`
	RequestTimeout   timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RefreshThreshold timex.Duration `json:"refresh_threshold" yaml:"refresh_threshold"`
	StatePath        string         `json:"state_path" yaml:"state_path"`
	LogLevel         string         `json:"log_level" yaml:"log_level"`
	LogFormat        string         `json:"log_format" yaml:"log_format"`
	MetricsAddr      string         `json:"metrics_addr" yaml:"metrics_addr"`
}

func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}
	return loadFile(cfg, path)
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return err
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.RefreshPath, fc.RefreshPath)
	setString(&cfg.StatePath, fc.StatePath)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)

	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RefreshThreshold.Duration > 0 {
		cfg.RefreshThreshold = fc.RefreshThreshold.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
