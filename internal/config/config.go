// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultCommandPrefix = "!"
	DefaultWebhookHost   = "0.0.0.0"
	DefaultWebhookPort   = 9095
	DefaultTVDBBaseURL   = "https://api4.thetvdb.com/v4"
)

// Config is the root configuration structure.
type Config struct {
	Matrix  MatrixConfig  `toml:"matrix"`
	Sonarr  ServiceConfig `toml:"sonarr"`
	Radarr  ServiceConfig `toml:"radarr"`
	TVDB    TVDBConfig    `toml:"tvdb"`
	TMDB    TMDBConfig    `toml:"tmdb"`
	TLS     TLSConfig     `toml:"tls"`
	Webhook WebhookConfig `toml:"webhook"`
	Log     LogConfig     `toml:"log"`
	Startup StartupConfig `toml:"startup"`

	// Warnings collects non-fatal adjustments made while applying defaults.
	Warnings []string `toml:"-"`
}

type MatrixConfig struct {
	Homeserver    string `toml:"homeserver" validate:"required,url"`
	User          string `toml:"user" validate:"required"`
	Password      string `toml:"password" validate:"required_without=AccessToken"`
	AccessToken   string `toml:"access_token"`
	TargetRoomID  string `toml:"target_room_id" validate:"omitempty,startswith=!"`
	CommandPrefix string `toml:"command_prefix"`
}

// ServiceConfig holds connection parameters for a Sonarr or Radarr instance.
type ServiceConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// Configured reports whether both the URL and API key are set.
func (s ServiceConfig) Configured() bool {
	return s.URL != "" && s.APIKey != ""
}

type TVDBConfig struct {
	BaseURL string `toml:"base_url" validate:"omitempty,url"`
	APIKey  string `toml:"api_key"`
}

type TMDBConfig struct {
	APIKey string `toml:"api_key"`
}

type TLSConfig struct {
	// Verify is a pointer so an absent key defaults to true.
	Verify *bool `toml:"verify"`
}

type WebhookConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type LogConfig struct {
	Level      string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `toml:"max_backups" validate:"gte=0"`
}

type StartupConfig struct {
	StatusReport *bool `toml:"status_report"`
}

// VerifyTLS reports whether outbound TLS certificates should be verified.
func (c *Config) VerifyTLS() bool {
	return c.TLS.Verify == nil || *c.TLS.Verify
}

// StartupReport reports whether a status report is posted once the bot connects.
func (c *Config) StartupReport() bool {
	return c.Startup.StatusReport == nil || *c.Startup.StatusReport
}

// WebhookAddr returns the listen address for the webhook server.
func (c *Config) WebhookAddr() string {
	return fmt.Sprintf("%s:%d", c.Webhook.Host, c.Webhook.Port)
}

// Load reads and parses the configuration file.
// Returns *ConfigError if environment variables are missing or validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	cfgErr := &ConfigError{
		Path:    path,
		Missing: missing,
		Errors:  cfg.Validate(),
	}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Matrix.CommandPrefix) != 1 {
		if c.Matrix.CommandPrefix != "" {
			c.Warnings = append(c.Warnings, fmt.Sprintf("invalid command prefix %q, defaulting to %q", c.Matrix.CommandPrefix, DefaultCommandPrefix))
		}
		c.Matrix.CommandPrefix = DefaultCommandPrefix
	}
	if c.Webhook.Host == "" {
		c.Webhook.Host = DefaultWebhookHost
	}
	if c.Webhook.Port == 0 {
		c.Webhook.Port = DefaultWebhookPort
	} else if c.Webhook.Port < 1 || c.Webhook.Port > 65535 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid webhook port %d, defaulting to %d", c.Webhook.Port, DefaultWebhookPort))
		c.Webhook.Port = DefaultWebhookPort
	}
	if c.TVDB.BaseURL == "" {
		c.TVDB.BaseURL = DefaultTVDBBaseURL
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
}

// loadDotEnv loads KEY=VALUE pairs from path without overriding variables
// already present in the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// substituteEnvVars replaces ${VAR} with environment variable values.
// ${VAR:-default} falls back to default when VAR is unset or empty.
// Unresolved references are left in place and returned in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, def := parts[1], parts[2] != "", parts[3]

		if value, ok := os.LookupEnv(name); ok && (value != "" || !hasDefault) {
			return value
		}
		if hasDefault {
			return def
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return match
	})

	return out, missing
}
