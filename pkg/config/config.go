package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	envBotToken     = "SAVBOT_BOT_TOKEN"
	envAllowedUsers = "SAVBOT_ALLOWED_USERS"
	envDatabaseURL  = "SAVBOT_DATABASE_URL"
)

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Storage   StorageConfig   `json:"storage"`
	Tasks     TasksConfig     `json:"tasks,omitempty"`
	Lifecycle LifecycleConfig `json:"lifecycle,omitempty"`
	Plugins   PluginsConfig   `json:"plugins,omitempty"`
	Logging   LoggingConfig   `json:"logging,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// TelegramConfig configures the bot connection and the owner allow list.
type TelegramConfig struct {
	Token        string  `json:"token"`
	AllowedUsers []int64 `json:"allowed_users"`
}

// StorageConfig selects the message store backend.
//
// An empty DatabaseURL selects the in-memory store, which also disables the
// task runner (plugin actions need the shared Postgres pool).
type StorageConfig struct {
	DatabaseURL string `json:"database_url"`
}

// TasksConfig configures the job queue used for plugin actions.
type TasksConfig struct {
	Queue string `json:"queue,omitempty"`
}

// PluginsConfig points at the manifest declaring plugin actions.
type PluginsConfig struct {
	Manifest string `json:"manifest,omitempty"`
}

// LifecycleConfig holds the message lifecycle timing knobs. All intervals are
// stored in seconds, the same unit the message records carry.
type LifecycleConfig struct {
	GraceSeconds        int    `json:"grace_seconds,omitempty"`
	DeleteDelaySeconds  [3]int `json:"delete_delay_seconds,omitempty"`
	DueScanSeconds      int    `json:"due_scan_seconds,omitempty"`
	ExpiredScanSeconds  int    `json:"expired_scan_seconds,omitempty"`
	RetentionTTLSeconds int    `json:"retention_ttl_seconds,omitempty"`
	MaxFileSize         int64  `json:"max_file_size,omitempty"`
	DataDir             string `json:"data_dir,omitempty"`
}

const (
	defaultGraceSeconds        = 60
	defaultDueScanSeconds      = 5
	defaultExpiredScanSeconds  = 60
	defaultMaxFileSize         = 20_000_000
	defaultRetentionTTLSeconds = 47 * 60 * 60 // Telegram refuses deletes past 48h
)

var defaultDeleteDelays = [3]int{15 * 60, 12 * 60 * 60, 48 * 60 * 60}

// GracePeriod is how long a fresh message waits before its default action fires.
func (c LifecycleConfig) GracePeriod() time.Duration {
	return secondsOr(c.GraceSeconds, defaultGraceSeconds)
}

// DeleteDelay returns the nth delayed-delete option (0-based).
func (c LifecycleConfig) DeleteDelay(n int) time.Duration {
	if n < 0 || n >= len(c.DeleteDelaySeconds) {
		return 0
	}
	return secondsOr(c.DeleteDelaySeconds[n], defaultDeleteDelays[n])
}

func (c LifecycleConfig) DueScanInterval() time.Duration {
	return secondsOr(c.DueScanSeconds, defaultDueScanSeconds)
}

func (c LifecycleConfig) ExpiredScanInterval() time.Duration {
	return secondsOr(c.ExpiredScanSeconds, defaultExpiredScanSeconds)
}

// RetentionTTL is the hard horizon after which messages are purged regardless
// of their scheduling state.
func (c LifecycleConfig) RetentionTTL() time.Duration {
	return secondsOr(c.RetentionTTLSeconds, defaultRetentionTTLSeconds)
}

func (c LifecycleConfig) MaxDownloadSize() int64 {
	if c.MaxFileSize > 0 {
		return c.MaxFileSize
	}
	return defaultMaxFileSize
}

func (c LifecycleConfig) DataDirectory() string {
	if strings.TrimSpace(c.DataDir) != "" {
		return c.DataDir
	}
	return "appdata"
}

func secondsOr(value, fallback int) time.Duration {
	if value > 0 {
		return time.Duration(value) * time.Second
	}
	return time.Duration(fallback) * time.Second
}

// LoadConfig resolves config.json, unmarshals it, and applies environment overrides.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides injects selected env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if token := strings.TrimSpace(os.Getenv(envBotToken)); token != "" {
		cfg.Telegram.Token = token
	}

	if rawUsers := strings.TrimSpace(os.Getenv(envAllowedUsers)); rawUsers != "" {
		cfg.Telegram.AllowedUsers = parseIDList(rawUsers)
	}

	if url := strings.TrimSpace(os.Getenv(envDatabaseURL)); url != "" {
		cfg.Storage.DatabaseURL = url
	}
}

// parseIDList splits comma-separated user ids, dropping anything non-numeric.
func parseIDList(input string) []int64 {
	parts := strings.Split(input, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return slices.Clip(ids)
}

// findConfigPath resolves the active config file location.
//
// Precedence is SAVBOT_CONFIG first, then cwd-local fallback paths.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("SAVBOT_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("SAVBOT_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("config.json not found (checked %s and %s)", candidates[0], candidates[1])
}
