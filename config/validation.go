package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// minimum signing secret length accepted outside development
const minProductionSecretLen = 32

// ValidateConfig checks that the configuration can run the service in its environment.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "is required"}.Error())
	} else if cfg.Environment.IsProduction() && len(cfg.JWTSecret) < minProductionSecretLen {
		errs = append(errs, ValidationError{
			Field:   "JWT_SECRET",
			Message: fmt.Sprintf("must be at least %d characters in production", minProductionSecretLen),
		}.Error())
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" && (cfg.DBHost == "" || cfg.DBName == "") {
			errs = append(errs, ValidationError{Field: "DATABASE_URL", Message: "or DB_HOST and DB_NAME are required"}.Error())
		}
	case "sqlite":
		if cfg.Environment.IsProduction() {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not supported in production"}.Error())
		}
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{Field: "SQLITE_PATH", Message: "is required for the sqlite driver"}.Error())
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unknown driver %q", cfg.DBDriver)}.Error())
	}

	if cfg.Environment.IsProduction() && cfg.LLMAPIKey == "" {
		errs = append(errs, ValidationError{Field: "LLM_API_KEY", Message: "is required in production"}.Error())
	}
	if cfg.EstimatesPerHour < 0 {
		errs = append(errs, ValidationError{Field: "ESTIMATES_PER_HOUR", Message: "must not be negative"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}
