// Package config loads catalog settings from defaults, config.yaml,
// CATALOG_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "CATALOG"

	KeyAPIURL   = "api_url"
	KeyDataDir  = "data_dir"
	KeyHTTPPort = "http_port"
	KeyPageSize = "page_size"
	KeyLogFile  = "log_file"
	KeyEnv      = "env"
)

// EnvDevelopment switches logging to the human-readable console encoder.
const EnvDevelopment = "development"

var ErrInvalid = errors.New("invalid configuration")

// Config holds the resolved settings.
type Config struct {
	APIURL   string `mapstructure:"api_url"`
	DataDir  string `mapstructure:"data_dir"`
	HTTPPort string `mapstructure:"http_port"`
	PageSize int    `mapstructure:"page_size"`
	LogFile  string `mapstructure:"log_file"`
	Env      string `mapstructure:"env"`
}

// Development reports whether Env selects development mode.
func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// Load resolves the configuration. Precedence is flag > env > config.yaml >
// default. Flags are bound by their key name with underscores as dashes
// (data_dir <- --data-dir). configDir may be empty, and a missing
// config.yaml is not an error.
func Load(configDir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyDataDir, "./data")
	v.SetDefault(KeyHTTPPort, "8080")
	v.SetDefault(KeyPageSize, listview.DefaultPageSize)
	v.SetDefault(KeyLogFile, ".logs/catalog.log")
	v.SetDefault(KeyEnv, "production")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{KeyAPIURL, KeyDataDir, KeyHTTPPort, KeyPageSize, KeyLogFile, KeyEnv} {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if configDir != "" {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(configDir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("%w: page_size must be positive, got %d", ErrInvalid, cfg.PageSize)
	}
	return &cfg, nil
}
