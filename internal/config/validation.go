// Package config provides configuration management for the racecast service.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MinTickInterval is the shortest period the tick scheduler can honour
const MinTickInterval = time.Second

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("roster", validateRoster)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateRoster requires at least two competitors with unique, case-insensitive names
func validateRoster(fl validator.FieldLevel) bool {
	names, ok := fl.Field().Interface().([]string)
	if !ok || len(names) < 2 {
		return false
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		id := strings.ToLower(strings.TrimSpace(name))
		if id == "" || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Server.TickInterval < MinTickInterval {
		return fmt.Errorf("server tick_interval must be at least %s", MinTickInterval)
	}

	sim := cfg.Simulation
	if sim.MuMin > sim.MuMax {
		return fmt.Errorf("simulation mu_min cannot exceed mu_max")
	}
	if sim.InitMuMin > sim.InitMuMax {
		return fmt.Errorf("simulation init_mu_min cannot exceed init_mu_max")
	}
	if sim.InitMuMin < sim.MuMin || sim.InitMuMax > sim.MuMax {
		return fmt.Errorf("simulation initial mu band must lie inside [mu_min, mu_max]")
	}

	switch cfg.Storage.Driver {
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("postgres storage requires database host, name and user")
		}
		if cfg.Database.MinConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("min_connections cannot exceed max_connections")
		}
	case "sqlite":
		if cfg.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite storage requires storage sqlite_path")
		}
	}

	if cfg.Alerts.Enabled && (cfg.Alerts.TelegramToken == "" || cfg.Alerts.TelegramChatID == 0) {
		return fmt.Errorf("alerts require telegram_token and telegram_chat_id")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.Server.Port {
		return fmt.Errorf("metrics port must differ from server port")
	}
	if cfg.Health.Enabled && cfg.Health.Port == cfg.Server.Port {
		return fmt.Errorf("health port must differ from server port")
	}

	// Validate production environment requirements
	if cfg.IsProduction() {
		if cfg.Storage.Driver == "memory" {
			return fmt.Errorf("production environment requires durable storage")
		}
		if cfg.Storage.Driver == "postgres" && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "roster":
			errMsg += fmt.Sprintf("- Field '%s' must list at least two unique competitor names\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.API.AdminEnabled {
			return fmt.Errorf("admin API must not be enabled in production")
		}
		if cfg.Storage.Driver == "postgres" && isTestCredential(cfg.Database.Password) {
			return fmt.Errorf("production environment should not use test database credentials")
		}
	}

	return nil
}

// isTestCredential checks if a credential looks like a test credential
func isTestCredential(credential string) bool {
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}
