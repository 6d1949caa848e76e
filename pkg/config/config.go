// Package config loads server configuration from a YAML file with ${VAR}
// environment expansion, falling back to environment variables alone.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Discord DiscordConfig `yaml:"discord"`
	Events  EventsConfig  `yaml:"events"`
	Audit   AuditConfig   `yaml:"audit"`
}

// ServerConfig configures the MCP server and its transport.
type ServerConfig struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport"` // "stdio" or "http"
	Address   string `yaml:"address"`
	LogLevel  string `yaml:"log_level"`

	// Token is the bot token used for stdio and single-tenant HTTP
	// deployments where callers do not present their own credential.
	Token string `yaml:"token"`
}

// DiscordConfig configures connection handling.
type DiscordConfig struct {
	MaxShards         int           `yaml:"max_shards"`
	SessionTimeout    time.Duration `yaml:"session_timeout"`
	ReadyTimeout      time.Duration `yaml:"ready_timeout"`
	ReconnectAttempts int           `yaml:"reconnect_attempts"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
}

// EventsConfig configures per-session event streams.
type EventsConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// AuditConfig configures tool-call auditing.
type AuditConfig struct {
	Enabled     bool   `yaml:"enabled"`
	PostgresDSN string `yaml:"postgres_dsn"`

	// AdminKey protects the audit query endpoints on the HTTP transport.
	// Leaving it empty disables those endpoints.
	AdminKey string `yaml:"admin_key"`
}

// Load reads and parses the YAML config at path, expanding ${VAR} patterns
// from the environment and applying defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- path comes from CLI args, controlled by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// FromEnv builds a configuration from environment variables alone, for
// deployments without a config file.
func FromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Address:  os.Getenv("DISCORD_MCP_ADDRESS"),
			LogLevel: os.Getenv("DISCORD_MCP_LOG_LEVEL"),
			Token:    os.Getenv("DISCORD_TOKEN"),
		},
		Audit: AuditConfig{
			PostgresDSN: os.Getenv("DISCORD_MCP_AUDIT_DSN"),
			AdminKey:    os.Getenv("DISCORD_MCP_ADMIN_KEY"),
		},
	}
	cfg.Audit.Enabled = cfg.Audit.PostgresDSN != ""
	if n, err := strconv.Atoi(os.Getenv("DISCORD_MCP_MAX_SHARDS")); err == nil {
		cfg.Discord.MaxShards = n
	}
	if n, err := strconv.Atoi(os.Getenv("DISCORD_MCP_EVENT_BUFFER_SIZE")); err == nil {
		cfg.Events.BufferSize = n
	}
	if d, err := time.ParseDuration(os.Getenv("DISCORD_MCP_SESSION_TIMEOUT")); err == nil {
		cfg.Discord.SessionTimeout = d
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "discord-mcp"
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = "http"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Discord.MaxShards == 0 {
		cfg.Discord.MaxShards = 1
	}
	if cfg.Discord.SessionTimeout == 0 {
		cfg.Discord.SessionTimeout = 300 * time.Second
	}
	if cfg.Discord.ReadyTimeout == 0 {
		cfg.Discord.ReadyTimeout = 30 * time.Second
	}
	if cfg.Discord.ReconnectAttempts == 0 {
		cfg.Discord.ReconnectAttempts = 5
	}
	if cfg.Discord.ReconnectDelay == 0 {
		cfg.Discord.ReconnectDelay = time.Second
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = 100
	}
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}
