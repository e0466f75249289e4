// Package config resolves run settings from command-line flags, environment
// variables and defaults, and bootstraps the working directory layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "hitodl/errors"
	"hitodl/models"
	"hitodl/parser"
	"hitodl/validation"
)

// Environment variables. HENTAI_DIR is kept for compatibility with existing setups.
const (
	EnvRootDir   = "HENTAI_DIR"
	EnvWorkers   = "HITODL_WORKERS"
	EnvLogLevel  = "HITODL_LOG_LEVEL"
	EnvLogFormat = "HITODL_LOG_FORMAT"
	EnvFormat    = "HITODL_FORMAT"
	EnvBrowser   = "HITODL_BROWSER"
	EnvCover     = "HITODL_COVER"
	EnvTimeout   = "HITODL_TIMEOUT"
)

// Defaults.
const (
	DefaultWorkers = 16
	DefaultTimeout = 60 * time.Second

	// DataDirName holds one directory per gallery under the root.
	DataDirName = "_data"
)

// Config holds the settings for one run.
type Config struct {
	RootDir   string        `flag:"root" validate:"required"`
	Workers   int           `flag:"workers" validate:"min=1,max=128"`
	LogLevel  string        `flag:"log-level" validate:"oneof=debug info warn error"`
	LogFormat string        `flag:"log-format" validate:"oneof=pretty json"`
	Format    models.Format `flag:"format" validate:"oneof=auto avif webp jpg"`
	Browser   bool          `flag:"browser"`
	Cover     bool          `flag:"cover"`
	Timeout   time.Duration `flag:"timeout" validate:"gt=0"`
}

// FlagValues carries raw flag values. An empty string means the flag was not given.
type FlagValues struct {
	Root      string
	Workers   string
	LogLevel  string
	LogFormat string
	Format    string
	Browser   string
	Cover     string
	Timeout   string
}

// Load resolves configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. Default values (lowest priority).
func Load(flags FlagValues) (*Config, error) {
	cfg := &Config{
		LogLevel:  strings.ToLower(getConfigValue(flags.LogLevel, EnvLogLevel, "info")),
		LogFormat: strings.ToLower(getConfigValue(flags.LogFormat, EnvLogFormat, "pretty")),
		Format:    models.Format(strings.ToLower(getConfigValue(flags.Format, EnvFormat, string(models.FormatAuto)))),
		Browser:   getBoolConfigValue(flags.Browser, EnvBrowser, false),
		Cover:     getBoolConfigValue(flags.Cover, EnvCover, false),
	}

	workers, err := getIntConfigValue(flags.Workers, EnvWorkers, DefaultWorkers)
	if err != nil {
		return nil, apperrors.Configf("invalid worker count: %v", err)
	}
	cfg.Workers = workers

	timeoutStr := getConfigValue(flags.Timeout, EnvTimeout, DefaultTimeout.String())
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, apperrors.Configf("invalid timeout %q: %v", timeoutStr, err)
	}
	cfg.Timeout = timeout

	root, err := expandRoot(getConfigValue(flags.Root, EnvRootDir, ""))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfig, "invalid root directory")
	}
	cfg.RootDir = root

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all config values are present and in range.
func (c *Config) Validate() error {
	return validation.New().Validate(c)
}

// DataDir returns the directory holding the gallery directories.
func (c *Config) DataDir() string {
	return filepath.Join(c.RootDir, DataDirName)
}

// CategoryDir returns the index directory of a category.
func (c *Config) CategoryDir(cat models.Category) string {
	return filepath.Join(c.RootDir, string(cat))
}

// expandRoot expands ~ and makes the path absolute.
// An empty path means the current directory.
func expandRoot(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	path, err := parser.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(strings.TrimSpace(strValue))
}
