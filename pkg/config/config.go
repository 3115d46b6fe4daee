package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is read from a YAML file under the user's home directory.
// All fields are optional; defaults are applied by the accessor methods.
//
// Example (~/.mingjing/config.yaml):
//
// server:
//   host: 127.0.0.1
//   port: 3000
// database:
//   driver: sqlite
//   dsn: ~/.mingjing/mingjing.db
// ai:
//   provider: anthropic
//   model: MiniMax-M2.5
//   base_url: https://api.minimaxi.com/anthropic
//
// Secrets (API key, JWT secret) are taken from the environment and are never
// written to the config file. Environment variables override file values:
// MINGJING_PORT, DATABASE_DRIVER, DATABASE_DSN, AI_PROVIDER, AI_MODEL,
// ANTHROPIC_BASE_URL, ANTHROPIC_API_KEY, JWT_SECRET.

type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Auth     AuthConfig     `yaml:"auth"`
}

type ServerConfig struct {
	Host *string `yaml:"host"`
	Port *int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver *string `yaml:"driver"` // sqlite, postgres, mysql
	DSN    *string `yaml:"dsn"`
}

type AIConfig struct {
	Provider *string `yaml:"provider"`
	Model    *string `yaml:"model"`
	BaseURL  *string `yaml:"base_url"`
	APIKey   *string `yaml:"-"` // env only
	Timeout  *int    `yaml:"timeout_seconds"`
}

type AuthConfig struct {
	JWTSecret   *string `yaml:"-"` // env only
	TokenExpiry *int    `yaml:"token_expiry_hours"`
}

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 3000

	DefaultDBDriver = "sqlite"

	DefaultAIProvider = "anthropic"
	DefaultAIModel    = "MiniMax-M2.5"
	DefaultAIBaseURL  = "https://api.minimaxi.com/anthropic"
	DefaultAITimeout  = 120 * time.Second

	DefaultTokenExpiry = 7 * 24 * time.Hour
)

// DefaultPaths returns the config dir and config file path.
func DefaultPaths() (configDir string, configFile string, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("get user home dir: %w", err)
	}
	configDir = filepath.Join(home, ".mingjing")
	configFile = filepath.Join(configDir, "config.yaml")
	return configDir, configFile, nil
}

// Load reads ~/.mingjing/config.yaml and applies environment overrides.
// If the file doesn't exist, it returns a default config and nil error.
func Load() (*AppConfig, string, error) {
	_, configFile, err := DefaultPaths()
	if err != nil {
		return nil, "", err
	}

	cfg := &AppConfig{}

	b, err := os.ReadFile(configFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("read config file %s: %w", configFile, err)
		}
	} else if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, "", fmt.Errorf("parse yaml config %s: %w", configFile, err)
	}

	cfg.applyEnv()

	// Validate
	if strings.TrimSpace(cfg.Host()) == "" {
		return nil, "", fmt.Errorf("invalid server.host (empty) in %s", configFile)
	}
	port := cfg.Port()
	if port < 1 || port > 65535 {
		return nil, "", fmt.Errorf("invalid server.port %d in %s", port, configFile)
	}
	switch cfg.DBDriver() {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, "", fmt.Errorf("invalid database.driver %q in %s", cfg.DBDriver(), configFile)
	}

	return cfg, configFile, nil
}

// applyEnv lets environment variables override file values. Secrets are only
// ever read from the environment.
func (c *AppConfig) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("MINGJING_PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = ptr(p)
		}
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_DRIVER")); v != "" {
		c.Database.Driver = ptr(v)
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_DSN")); v != "" {
		c.Database.DSN = ptr(v)
	}
	if v := strings.TrimSpace(os.Getenv("AI_PROVIDER")); v != "" {
		c.AI.Provider = ptr(v)
	}
	if v := strings.TrimSpace(os.Getenv("AI_MODEL")); v != "" {
		c.AI.Model = ptr(v)
	}
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL")); v != "" {
		c.AI.BaseURL = ptr(v)
	}
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		c.AI.APIKey = ptr(v)
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		c.Auth.JWTSecret = ptr(v)
	}
}

// EnsureDefaultConfig writes a default config file if it doesn't already exist.
// It is safe to call on startup.
func EnsureDefaultConfig() (string, error) {
	configDir, configFile, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configFile); err == nil {
		return configFile, nil
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", configDir, err)
	}

	defaultCfg := AppConfig{
		Server:   ServerConfig{Host: ptr(DefaultHost), Port: ptr(DefaultPort)},
		Database: DatabaseConfig{Driver: ptr(DefaultDBDriver)},
		AI:       AIConfig{Provider: ptr(DefaultAIProvider), Model: ptr(DefaultAIModel), BaseURL: ptr(DefaultAIBaseURL)},
	}
	b, err := yaml.Marshal(&defaultCfg)
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}

	// Write with restrictive permissions.
	if err := os.WriteFile(configFile, b, 0o600); err != nil {
		return "", fmt.Errorf("write default config file %s: %w", configFile, err)
	}

	return configFile, nil
}

func (c *AppConfig) Host() string {
	if c == nil || c.Server.Host == nil {
		return DefaultHost
	}
	v := strings.TrimSpace(*c.Server.Host)
	if v == "" {
		return DefaultHost
	}
	return v
}

func (c *AppConfig) Port() int {
	if c == nil || c.Server.Port == nil {
		return DefaultPort
	}
	return *c.Server.Port
}

func (c *AppConfig) DBDriver() string {
	if c == nil || c.Database.Driver == nil {
		return DefaultDBDriver
	}
	return strings.TrimSpace(*c.Database.Driver)
}

// DBDSN returns the configured DSN, defaulting to a sqlite file under the
// config directory.
func (c *AppConfig) DBDSN() string {
	if c != nil && c.Database.DSN != nil && strings.TrimSpace(*c.Database.DSN) != "" {
		return strings.TrimSpace(*c.Database.DSN)
	}
	configDir, _, err := DefaultPaths()
	if err != nil {
		return "mingjing.db"
	}
	return filepath.Join(configDir, "mingjing.db")
}

func (c *AppConfig) AIProvider() string {
	if c == nil || c.AI.Provider == nil {
		return DefaultAIProvider
	}
	return strings.TrimSpace(*c.AI.Provider)
}

func (c *AppConfig) AIModel() string {
	if c == nil || c.AI.Model == nil {
		return DefaultAIModel
	}
	return strings.TrimSpace(*c.AI.Model)
}

func (c *AppConfig) AIBaseURL() string {
	if c == nil || c.AI.BaseURL == nil {
		return DefaultAIBaseURL
	}
	return strings.TrimSpace(*c.AI.BaseURL)
}

func (c *AppConfig) AIAPIKey() string {
	if c == nil || c.AI.APIKey == nil {
		return ""
	}
	return *c.AI.APIKey
}

func (c *AppConfig) AITimeout() time.Duration {
	if c == nil || c.AI.Timeout == nil || *c.AI.Timeout <= 0 {
		return DefaultAITimeout
	}
	return time.Duration(*c.AI.Timeout) * time.Second
}

func (c *AppConfig) JWTSecret() string {
	if c == nil || c.Auth.JWTSecret == nil {
		return ""
	}
	return *c.Auth.JWTSecret
}

func (c *AppConfig) TokenExpiry() time.Duration {
	if c == nil || c.Auth.TokenExpiry == nil || *c.Auth.TokenExpiry <= 0 {
		return DefaultTokenExpiry
	}
	return time.Duration(*c.Auth.TokenExpiry) * time.Hour
}

func ptr[T any](v T) *T { return &v }
