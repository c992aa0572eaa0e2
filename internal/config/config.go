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

// Config captures the settings submatch needs to reach the server.
type Config struct {
	ServerURL      string
	Username       string
	Password       string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	LogLevel       string
	LogFile        string
}

// ServerURLEnv overrides server_url when set.
const ServerURLEnv = "SUBMATCH_SERVER_URL"

const (
	defaultConfigPath     = "~/.config/submatch/config.toml"
	defaultLogFile        = "~/.local/state/submatch/submatch.log"
	defaultServerURL      = "https://localhost"
	defaultLogLevel       = "info"
	defaultPollInterval   = 5000 * time.Millisecond
	defaultRequestTimeout = 5000 * time.Millisecond
	minPollInterval       = 250 * time.Millisecond
)

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
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
		ServerURL        string `toml:"server_url"`
		Username         string `toml:"username"`
		Password         string `toml:"password"`
		PollIntervalMS   int64  `toml:"poll_interval_ms"`
		RequestTimeoutMS int64  `toml:"request_timeout_ms"`
		LogLevel         string `toml:"log_level"`
		LogFile          string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ServerURL); v != "" {
		cfg.ServerURL = v
	}
	cfg.Username = strings.TrimSpace(raw.Username)
	cfg.Password = raw.Password
	if raw.PollIntervalMS > 0 {
		cfg.PollInterval = ClampPollInterval(time.Duration(raw.PollIntervalMS) * time.Millisecond)
	}
	if raw.RequestTimeoutMS > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutMS) * time.Millisecond
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// ClampPollInterval keeps an interval from hammering the server.
func ClampPollInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultPollInterval
	}
	if d < minPollInterval {
		return minPollInterval
	}
	return d
}

// DefaultPath returns the expanded default config path.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func defaults() Config {
	return Config{
		ServerURL:      defaultServerURL,
		PollInterval:   defaultPollInterval,
		RequestTimeout: defaultRequestTimeout,
		LogLevel:       defaultLogLevel,
		LogFile:        mustExpand(defaultLogFile),
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(ServerURLEnv)); v != "" {
		cfg.ServerURL = v
	}
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
