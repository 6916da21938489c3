// Package config loads console settings from defaults, an optional config file
// and MLREG_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the registry address used when nothing else is configured.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultPageSize is the number of rows per page in the models table.
	DefaultPageSize = 10
	// DefaultLogLevel is the zerolog level name used when unset.
	DefaultLogLevel = "info"

	EnvConfigPath = "MLREG_CONFIG"
	EnvBaseURL    = "MLREG_BASE_URL"
	EnvPageSize   = "MLREG_PAGE_SIZE"
	EnvLogFile    = "MLREG_LOG_FILE"
	EnvLogLevel   = "MLREG_LOG_LEVEL"
)

// Config holds runtime parameters for the console.
// Zero values mean "unspecified" and are replaced by Default values in Merge.
type Config struct {
	BaseURL  string `json:"base_url" yaml:"base_url" toml:"base_url"`
	PageSize int    `json:"page_size" yaml:"page_size" toml:"page_size"`
	LogFile  string `json:"log_file" yaml:"log_file" toml:"log_file"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		PageSize: DefaultPageSize,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Merge returns base with every non-zero field of override applied on top.
func Merge(base, override Config) Config {
	if override.BaseURL != "" {
		base.BaseURL = override.BaseURL
	}
	if override.PageSize != 0 {
		base.PageSize = override.PageSize
	}
	if override.LogFile != "" {
		base.LogFile = override.LogFile
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	return base
}

// FromEnv reads MLREG_* overrides. Unset variables leave fields zero.
func FromEnv() (Config, error) {
	cfg := Config{
		BaseURL:  os.Getenv(EnvBaseURL),
		LogFile:  os.Getenv(EnvLogFile),
		LogLevel: os.Getenv(EnvLogLevel),
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		cfg.PageSize = n
	}
	return cfg, nil
}

// Resolve layers defaults, the config file (explicit path, else MLREG_CONFIG),
// the environment and finally flags, then validates the result.
func Resolve(path string, flags Config) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = Merge(cfg, fileCfg)
	}
	envCfg, err := FromEnv()
	if err != nil {
		return cfg, err
	}
	cfg = Merge(cfg, envCfg)
	cfg = Merge(cfg, flags)
	return cfg, cfg.Validate()
}

// Validate reports configuration values the console cannot work with.
func (c Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.BaseURL)
	switch {
	case c.BaseURL == "":
		errs = append(errs, errors.New("base_url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("base_url: unsupported scheme %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("base_url: missing host"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", c.PageSize))
	}
	return errors.Join(errs...)
}
