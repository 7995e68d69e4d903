package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Notion    NotionConfig    `yaml:"notion"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	MCP       MCPConfig       `yaml:"mcp"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// NotionConfig holds the API credentials and target databases. Missing
// values are not a startup error; the webhook reports them per request.
type NotionConfig struct {
	Token          string        `yaml:"token"`
	LogDatabaseID  string        `yaml:"log_database_id"`
	SetsDatabaseID string        `yaml:"sets_database_id"`
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	WebhookSecret string `yaml:"webhook_secret"`
}

// StorageConfig selects the submission log backend: "" (disabled),
// "sqlite" or "postgres".
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel parses Level, falling back to info.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func defaults() *Config {
	return &Config{
		Server:    ServerConfig{Port: 8080},
		Tailscale: TailscaleConfig{Hostname: "workoutlog"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads config from an optional YAML file, then applies environment
// variable overrides. envFiles are loaded into the process environment first
// (default ".env"); missing files are skipped and existing variables win.
//
// The Notion variables keep their deployment names:
//
//	NOTION_TOKEN, NOTION_DATABASE_ID_LOG, NOTION_DATABASE_ID_SETS, WEBHOOK_SECRET
//
// Everything else uses the WORKOUTLOG_ prefix:
//
//	WORKOUTLOG_SERVER_HOST, WORKOUTLOG_SERVER_PORT, WORKOUTLOG_NOTION_BASE_URL,
//	WORKOUTLOG_NOTION_TIMEOUT, WORKOUTLOG_STORAGE_DRIVER, WORKOUTLOG_STORAGE_DSN,
//	WORKOUTLOG_MCP_ENABLED, WORKOUTLOG_TAILSCALE_ENABLED,
//	WORKOUTLOG_TAILSCALE_HOSTNAME, WORKOUTLOG_TAILSCALE_STATE_DIR,
//	WORKOUTLOG_LOG_LEVEL
func Load(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %s: %w", f, err)
		}
	}

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Notion.Token, "NOTION_TOKEN")
	setString(&cfg.Notion.LogDatabaseID, "NOTION_DATABASE_ID_LOG")
	setString(&cfg.Notion.SetsDatabaseID, "NOTION_DATABASE_ID_SETS")
	setString(&cfg.Auth.WebhookSecret, "WEBHOOK_SECRET")

	setString(&cfg.Server.Host, "WORKOUTLOG_SERVER_HOST")
	if v := os.Getenv("WORKOUTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	setString(&cfg.Notion.BaseURL, "WORKOUTLOG_NOTION_BASE_URL")
	if v := os.Getenv("WORKOUTLOG_NOTION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Notion.Timeout = d
		}
	}
	setString(&cfg.Storage.Driver, "WORKOUTLOG_STORAGE_DRIVER")
	setString(&cfg.Storage.DSN, "WORKOUTLOG_STORAGE_DSN")
	setBool(&cfg.MCP.Enabled, "WORKOUTLOG_MCP_ENABLED")
	setBool(&cfg.Tailscale.Enabled, "WORKOUTLOG_TAILSCALE_ENABLED")
	setString(&cfg.Tailscale.Hostname, "WORKOUTLOG_TAILSCALE_HOSTNAME")
	setString(&cfg.Tailscale.StateDir, "WORKOUTLOG_TAILSCALE_STATE_DIR")
	setString(&cfg.Log.Level, "WORKOUTLOG_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.Storage.Driver {
	case "":
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
