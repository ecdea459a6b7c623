package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the engine.
// Values come from a YAML file (config.yaml) with environment variable
// overrides; secrets (PGPASSWORD, NARRATIVE_API_KEY) are env-only.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8470"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// MigrationsPath is the directory holding numbered SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	// Narrative holds the optional free-text generator endpoint. When the
	// endpoint is empty the deterministic templates are used exclusively.
	Narrative NarrativeConfig `yaml:"narrative"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"apqp"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"apqp_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// URL builds a pgx-compatible connection URL.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// NarrativeConfig holds settings for the enhanced narrative generator.
type NarrativeConfig struct {
	Endpoint  string `yaml:"endpoint" env:"NARRATIVE_ENDPOINT" env-default:""`
	Model     string `yaml:"model" env:"NARRATIVE_MODEL" env-default:""`
	APIKey    string `yaml:"-" env:"NARRATIVE_API_KEY"` // Secret - not in YAML
	TimeoutMS int    `yaml:"timeout_ms" env:"NARRATIVE_TIMEOUT_MS" env-default:"3000"`
}

// IsAvailable returns true if the enhanced generator is configured.
func (c *NarrativeConfig) IsAvailable() bool {
	return c.Endpoint != "" && c.Model != ""
}

// Timeout returns the narrative call deadline as a duration.
func (c *NarrativeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on
// the returned Config. A missing config.yaml is not an error: env
// variables and defaults are enough to run.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	return cfg, nil
}
