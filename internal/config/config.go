package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server           ServerConfig    `yaml:"server"`
	Data             DataConfig      `yaml:"data"`
	Database         DatabaseConfig  `yaml:"database"`
	Search           SearchConfig    `yaml:"search"`
	Scheduler        SchedulerConfig `yaml:"scheduler"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
	SearchDebounceMs int             `yaml:"search_debounce_ms"`
	Logging          LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DataConfig tells the loader where datasets live
type DataConfig struct {
	BaseDir        string `yaml:"base_dir"`
	BaseURL        string `yaml:"base_url"`
	Manifest       string `yaml:"manifest"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	WarmOnStart    bool   `yaml:"warm_on_start"`
}

// DatabaseConfig contains database settings. Type is "", "mysql", "postgres" or "both".
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	Table    string         `yaml:"table"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings. An empty host disables the mirror.
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

// SchedulerConfig controls the daily manifest refresh
type SchedulerConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DailyRunTime string `yaml:"daily_run_time"`
	Reindex      bool   `yaml:"reindex"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Data: DataConfig{
			BaseDir:        "./data",
			Manifest:       "manifest.json",
			TimeoutSeconds: 30,
			WarmOnStart:    true,
		},
		Database: DatabaseConfig{
			Table: "trades",
			MySQL: MySQLConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "trademap",
				Database: "trademap",
			},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "trademap",
				Database: "trademap",
				SSLMode:  "disable",
			},
		},
		Search: SearchConfig{
			Meilisearch: MeilisearchConfig{
				Index: "trades",
			},
		},
		Scheduler: SchedulerConfig{
			Enabled:      false,
			DailyRunTime: "04:00",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 600,
			RequestsPerHour:   20000,
		},
		SearchDebounceMs: 300,
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetTimeout returns the dataset fetch timeout as a duration
func (c *DataConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetSearchDebounce returns the search debounce delay as a duration
func (c *Config) GetSearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}

// UsesMySQL reports whether the MySQL trade reader should be opened
func (c *DatabaseConfig) UsesMySQL() bool {
	return c.Type == "mysql" || c.Type == "both"
}

// UsesPostgres reports whether the PostgreSQL trade reader should be opened
func (c *DatabaseConfig) UsesPostgres() bool {
	return c.Type == "postgres" || c.Type == "both"
}
