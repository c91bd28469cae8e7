package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings that shape the dtf session and logging.
type Config struct {
	BaseURL           string
	JSVersion         string
	LogPath           string
	LogLevel          string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	HitMaxAttempts    int
}

const (
	defaultConfigPath        = "~/.config/imageposter/config.toml"
	defaultLogPath           = "~/.local/share/imageposter/imageposter.log"
	defaultBaseURL           = "https://dtf.ru"
	defaultJSVersion         = "01aba50c"
	defaultLogLevel          = "info"
	defaultRequestTimeout    = 60 * time.Second
	defaultRequestsPerSecond = 2.0
	defaultHitMaxAttempts    = 10
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		JSVersion:         defaultJSVersion,
		LogPath:           mustExpand(defaultLogPath),
		LogLevel:          defaultLogLevel,
		RequestTimeout:    defaultRequestTimeout,
		RequestsPerSecond: defaultRequestsPerSecond,
		HitMaxAttempts:    defaultHitMaxAttempts,
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL               string   `toml:"base_url"`
		JSVersion             string   `toml:"js_version"`
		LogPath               string   `toml:"log_path"`
		LogLevel              string   `toml:"log_level"`
		RequestTimeoutSeconds *int     `toml:"request_timeout_seconds"`
		RequestsPerSecond     *float64 `toml:"requests_per_second"`
		HitMaxAttempts        *int     `toml:"hit_max_attempts"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(raw.JSVersion); v != "" {
		cfg.JSVersion = v
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if raw.RequestTimeoutSeconds != nil {
		if *raw.RequestTimeoutSeconds <= 0 {
			return Config{}, fmt.Errorf("parse config: request_timeout_seconds must be positive")
		}
		cfg.RequestTimeout = time.Duration(*raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.RequestsPerSecond != nil {
		// zero disables pacing
		if *raw.RequestsPerSecond < 0 {
			return Config{}, fmt.Errorf("parse config: requests_per_second must not be negative")
		}
		cfg.RequestsPerSecond = *raw.RequestsPerSecond
	}
	if raw.HitMaxAttempts != nil {
		if *raw.HitMaxAttempts <= 0 {
			return Config{}, fmt.Errorf("parse config: hit_max_attempts must be positive")
		}
		cfg.HitMaxAttempts = *raw.HitMaxAttempts
	}

	return cfg, nil
}

// DefaultPath returns the config location used when none is given.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
