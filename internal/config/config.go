// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SourceSQLite = "sqlite"
	SourceREST   = "rest"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Backend  BackendConfig  `yaml:"backend"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
	// Seed loads the embedded catalog on startup.
	Seed bool `yaml:"seed"`
}

type CatalogConfig struct {
	Source string `yaml:"source"` // sqlite | rest
}

type BackendConfig struct {
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type SessionConfig struct {
	IdleTTL string `yaml:"idle_ttl"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "/data/macrokitchen.db",
			Seed: true,
		},
		Catalog: CatalogConfig{
			Source: SourceSQLite,
		},
		Backend: BackendConfig{
			Timeout: "30s",
		},
		Session: SessionConfig{
			IdleTTL: "2h",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if host := os.Getenv("MACRO_KITCHEN_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("MACRO_KITCHEN_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid MACRO_KITCHEN_PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	if path := os.Getenv("MACRO_KITCHEN_DB"); path != "" {
		c.Database.Path = path
	}
	if src := os.Getenv("MACRO_KITCHEN_CATALOG"); src != "" {
		c.Catalog.Source = src
	}
	if level := os.Getenv("MACRO_KITCHEN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	// Hosted backend
	if url := os.Getenv("BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	if key := os.Getenv("BACKEND_API_KEY"); key != "" {
		c.Backend.APIKey = key
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetBackendTimeout returns the REST timeout as a duration.
func (c *Config) GetBackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetSessionIdleTTL returns how long an untouched builder session is kept.
func (c *Config) GetSessionIdleTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.IdleTTL)
	if err != nil || d <= 0 {
		return 2 * time.Hour
	}
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path not configured (set MACRO_KITCHEN_DB)")
	}

	switch c.Catalog.Source {
	case SourceSQLite:
	case SourceREST:
		if c.Backend.URL == "" || c.Backend.APIKey == "" {
			return fmt.Errorf("rest catalog needs BACKEND_URL and BACKEND_API_KEY")
		}
	default:
		return fmt.Errorf("invalid catalog source: %s (valid: %s, %s)", c.Catalog.Source, SourceSQLite, SourceREST)
	}
	return nil
}
