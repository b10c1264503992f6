// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Package config loads the service configuration with layered precedence:
// built-in defaults, an optional YAML config file, then environment
// variables. Environment variables win, matching how the service is
// deployed in containers where a config file is rarely mounted.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/webesync/config.yaml",
	"/etc/webesync/config.yml",
}

// ConfigPathEnvVar overrides the config file search entirely.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the full service configuration tree.
type Config struct {
	Webe      WebeConfig      `koanf:"webe"`
	Webhook   WebhookConfig   `koanf:"webhook"`
	Site      SiteConfig      `koanf:"site"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// WebeConfig configures the upstream WeBeFriends integrations API.
// The client is disabled (all reads served from snapshots or the
// bundled fallback) when APIKey is empty.
type WebeConfig struct {
	BaseURL   string        `koanf:"base_url" validate:"omitempty,url"`
	APIKey    string        `koanf:"api_key"`
	UserAgent string        `koanf:"user_agent"`
	Timeout   time.Duration `koanf:"timeout" validate:"min=1s,max=2m"`
}

// WebhookConfig holds the shared secret for webhook signature checks.
// An empty secret causes every delivery to be rejected rather than
// accepted unsigned.
type WebhookConfig struct {
	Secret string `koanf:"secret"`
}

// SiteConfig names the default site served when a request or payload
// does not identify one.
type SiteConfig struct {
	Slug   string `koanf:"slug" validate:"required"`
	PageID string `koanf:"page_id" validate:"required"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=1"`
	RateWindow      time.Duration `koanf:"rate_window" validate:"min=1s"`
}

// DatabaseConfig configures the Badger store. An empty Path selects an
// in-memory database, which is only useful for tests and local runs.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// CacheConfig configures the content cache.
type CacheConfig struct {
	SnapshotTTL time.Duration `koanf:"snapshot_ttl" validate:"min=1m"`
}

// SchedulerConfig configures the nightly full refresh.
type SchedulerConfig struct {
	Enabled     bool   `koanf:"enabled"`
	RefreshTime string `koanf:"refresh_time" validate:"required"`
	Timezone    string `koanf:"timezone" validate:"required"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// ListenAddr returns the host:port pair for the HTTP listener.
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// defaultConfig returns the built-in defaults. These are applied first,
// then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Webe: WebeConfig{
			BaseURL:   "https://webefriends.com/api/integrations",
			APIKey:    "", // empty disables live fetches
			UserAgent: "",
			Timeout:   9 * time.Second,
		},
		Webhook: WebhookConfig{
			Secret: "",
		},
		Site: SiteConfig{
			Slug:   "howlin-yuma",
			PageID: "webe-source-page",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       120,
			RateWindow:      time.Minute,
		},
		Database: DatabaseConfig{
			Path: "/data/webesync",
		},
		Cache: CacheConfig{
			SnapshotTTL: time.Hour,
		},
		Scheduler: SchedulerConfig{
			Enabled:     true,
			RefreshTime: "03:30",
			Timezone:    "America/Phoenix",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and environment variables, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// WEBE_API_KEY -> webe.api_key, SERVER_PORT -> server.port, etc.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, preferring the path from
// CONFIG_PATH over the default search list.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sectionPrefixes maps environment variable prefixes to config
// sections. The remainder of the variable name becomes the key within
// the section, so WEBE_BASE_URL maps to webe.base_url.
var sectionPrefixes = []string{
	"webe_",
	"webhook_",
	"site_",
	"server_",
	"database_",
	"cache_",
	"scheduler_",
	"logging_",
}

// legacyEnvMappings keeps the environment variable names the previous
// deployment used working.
var legacyEnvMappings = map[string]string{
	"webe_api_key":          "webe.api_key",
	"webe_api_base_url":     "webe.base_url",
	"webe_webhook_secret":   "webhook.secret",
	"festival_site_slug":    "site.slug",
	"festival_page_id":      "site.page_id",
	"http_port":             "server.port",
	"badger_path":           "database.path",
	"content_snapshot_ttl":  "cache.snapshot_ttl",
	"refresh_schedule_time": "scheduler.refresh_time",
	"refresh_schedule_tz":   "scheduler.timezone",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unrecognized variables are dropped so unrelated environment noise
// cannot leak into the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if path, ok := legacyEnvMappings[key]; ok {
		return path
	}

	for _, prefix := range sectionPrefixes {
		if strings.HasPrefix(key, prefix) {
			section := strings.TrimSuffix(prefix, "_")
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}

	return ""
}

// validate is shared across Validate calls; the validator caches
// struct metadata so reusing one instance is the cheap path.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for structural problems beyond
// what unmarshaling catches.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q constraint", fe.Namespace(), fe.Tag())
		}
		return err
	}

	if err := validateClockTime(c.Scheduler.RefreshTime); err != nil {
		return fmt.Errorf("invalid scheduler.refresh_time: %w", err)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid scheduler.timezone: %w", err)
	}

	return nil
}

// validateClockTime checks an HH:MM wall-clock time.
func validateClockTime(value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("want HH:MM, got %q", value)
	}
	return nil
}
