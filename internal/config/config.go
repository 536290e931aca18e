package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/county-report/internal/resolver"
)

// Resolver backends
const (
	ResolverAPI      = "api"
	ResolverPostgres = "postgres"
)

// Config holds settings for one report run
type Config struct {
	Resolver    string
	APIBaseURL  string
	HTTPTimeout time.Duration
	Debug       bool
	Database    DatabaseConfig
}

// DatabaseConfig is used by the postgres resolver only
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Table    string
}

// Load reads the .env file, then the environment
func Load() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment only
func FromEnv() *Config {
	return &Config{
		Resolver:    GetEnv("COUNTY_RESOLVER", ResolverAPI),
		APIBaseURL:  GetEnv("POSTCODE_API_URL", resolver.DefaultBaseURL),
		HTTPTimeout: time.Duration(GetEnvInt("HTTP_TIMEOUT_SECONDS", 0)) * time.Second,
		Debug:       GetEnvBool("DEBUG", false),
		Database: DatabaseConfig{
			Host:     GetEnv("PGHOST", "localhost"),
			Port:     GetEnv("PGPORT", "5432"),
			User:     GetEnv("PGUSER", "postgres"),
			Password: GetEnv("PGPASSWORD", ""),
			Name:     GetEnv("PGDATABASE", "postcodes"),
			SSLMode:  GetEnv("PGSSLMODE", "disable"),
			Table:    GetEnv("POSTCODE_TABLE", resolver.DefaultPostcodeTable),
		},
	}
}

// Validate checks the settings that can be wrong
func (c *Config) Validate() error {
	switch c.Resolver {
	case ResolverAPI:
		if c.APIBaseURL == "" {
			return fmt.Errorf("postcode API URL is empty")
		}
	case ResolverPostgres:
		if c.Database.Table == "" {
			return fmt.Errorf("postcode table is empty")
		}
	default:
		return fmt.Errorf("unknown resolver %q (want %s or %s)", c.Resolver, ResolverAPI, ResolverPostgres)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP timeout must not be negative")
	}
	return nil
}

// DSN returns the PostgreSQL connection string. Empty settings are left out
// so the driver falls back to its own defaults for them.
func (d DatabaseConfig) DSN() string {
	parts := []string{}
	for _, kv := range [][2]string{
		{"host", d.Host},
		{"port", d.Port},
		{"user", d.User},
		{"password", d.Password},
		{"dbname", d.Name},
		{"sslmode", d.SSLMode},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, " ")
}
