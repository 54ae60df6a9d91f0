// Package config provides configuration management for the racecast service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Health     HealthConfig     `mapstructure:"health"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	API        APIConfig        `mapstructure:"api"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
}

// ServerConfig represents the broadcast server and tick driver
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	TickInterval    time.Duration `mapstructure:"tick_interval" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	PayloadDump     bool          `mapstructure:"payload_dump"`
}

// SimulationConfig represents race engine parameters
type SimulationConfig struct {
	Competitors          []string      `mapstructure:"competitors" validate:"required,roster"`
	RestInterval         time.Duration `mapstructure:"rest_interval" validate:"gte=0"`
	Rollouts             int           `mapstructure:"rollouts" validate:"required,gt=0"`
	Workers              int           `mapstructure:"workers" validate:"gte=0,lte=64"`
	MemoryWindow         int           `mapstructure:"memory_window" validate:"required,gt=0"`
	WarmupRaces          int           `mapstructure:"warmup_races" validate:"gte=0"`
	HistoryWindow        int           `mapstructure:"history_window" validate:"required,gt=0"`
	Seed                 int64         `mapstructure:"seed"`
	MuMin                float64       `mapstructure:"mu_min" validate:"required,gt=0"`
	MuMax                float64       `mapstructure:"mu_max" validate:"required,gt=0"`
	MaxSigmaRatio        float64       `mapstructure:"max_sigma_ratio" validate:"required,gt=0,lte=1"`
	InitMuMin            float64       `mapstructure:"init_mu_min" validate:"required,gt=0"`
	InitMuMax            float64       `mapstructure:"init_mu_max" validate:"required,gt=0"`
	ProbabilityPrecision int           `mapstructure:"probability_precision" validate:"gte=0,lte=10"`
}

// StorageConfig selects the race history backend
type StorageConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres sqlite memory"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	HistoryCacheTTL time.Duration `mapstructure:"history_cache_ttl" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// HealthConfig represents the probe server configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// AlertsConfig represents operator alerting via Telegram
type AlertsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

// APIConfig represents the HTTP API surface
type APIConfig struct {
	AdminEnabled   bool     `mapstructure:"admin_enabled"`
	RateLimit      float64  `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst      int      `mapstructure:"rate_burst" validate:"gte=0"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the broadcast server listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
