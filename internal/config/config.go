// Package config loads the toolkit's environment configuration.
//
// Values come from the process environment after an optional .env file in
// the working directory has been applied. Flags given on the command line
// take precedence; see cmd/toolkit for how the values become flag defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultDirName is the per-user directory under the home directory.
const DefaultDirName = ".developer_utility_toolkit"

// ErrParsingConfig is returned when environment variables cannot be parsed.
var ErrParsingConfig = errors.New("failed to parse environment variables into config")

// Config holds settings shared by every command.
type Config struct {
	// Home is the toolkit data directory. Empty means ~/.developer_utility_toolkit.
	Home        string        `env:"TOOLKIT_HOME"`
	LogLevel    string        `env:"TOOLKIT_LOG_LEVEL" envDefault:"warn"`
	LogFormat   string        `env:"TOOLKIT_LOG_FORMAT" envDefault:"text"`
	HTTPTimeout time.Duration `env:"TOOLKIT_HTTP_TIMEOUT" envDefault:"10s"`
	HTTPRetries int           `env:"TOOLKIT_HTTP_RETRIES" envDefault:"2"`
	NoHistory   bool          `env:"TOOLKIT_NO_HISTORY" envDefault:"false"`
}

var dotenvLoaded sync.Once

// Load reads Config from the environment.
func Load() (Config, error) {
	dotenvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.Home = filepath.Join(home, DefaultDirName)
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.HTTPRetries < 0 {
		cfg.HTTPRetries = 0
	}
	return cfg, nil
}

// HistoryDir is the directory holding history.jsonl.
func (c Config) HistoryDir() string {
	return filepath.Join(c.Home, "history")
}

// ConfigFile is the optional YAML file with flag defaults.
func (c Config) ConfigFile() string {
	return filepath.Join(c.Home, "config.yaml")
}

// Vars exposes the configuration as kong interpolation variables.
func (c Config) Vars() map[string]string {
	return map[string]string{
		"home":         c.Home,
		"http_timeout": strconv.Itoa(int(c.HTTPTimeout / time.Second)),
		"http_retries": strconv.Itoa(c.HTTPRetries),
		"log_level":    c.LogLevel,
		"log_format":   c.LogFormat,
	}
}
