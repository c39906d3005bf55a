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

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver     string
	DatabaseURL  string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	SQLitePath   string
	MigrationsOn bool

	// Redis configuration
	RedisURL string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Estimator (OpenAI-compatible chat completions endpoint)
	LLMAPIKey  string
	LLMAPIURL  string
	LLMModel   string
	LLMTimeout time.Duration

	// Report exports
	S3Bucket  string
	AWSRegion string

	CORSOrigins      []string
	EstimatesPerHour int
	ShutdownTimeout  time.Duration
}

const (
	defaultLLMAPIURL = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultLLMModel  = "gemini-2.0-flash"
)

// LoadConfig builds a Config from the environment. Every value can come either from an
// environment variable or from a Docker secret file of the same name in lower case.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		// .env is a convenience for local runs; its absence is not an error
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{
		Environment: env,
		ServerPort:  lookup("SERVER_PORT", "8080"),
		ServerHost:  lookup("SERVER_HOST", "0.0.0.0"),
		DBDriver:    lookup("DB_DRIVER", "postgres"),
		DatabaseURL: lookup("DATABASE_URL", ""),
		DBHost:      lookup("DB_HOST", "localhost"),
		DBPort:      lookup("DB_PORT", "5432"),
		DBUser:      lookup("DB_USER", "postgres"),
		DBPassword:  lookup("DB_PASSWORD", ""),
		DBName:      lookup("DB_NAME", "fittrack"),
		DBSSLMode:   lookup("DB_SSL_MODE", "disable"),
		SQLitePath:  lookup("SQLITE_PATH", "fittrack.db"),
		RedisURL:    lookup("REDIS_URL", ""),
		JWTSecret:   lookup("JWT_SECRET", ""),
		LLMAPIKey:   lookup("LLM_API_KEY", ""),
		LLMAPIURL:   lookup("LLM_API_URL", defaultLLMAPIURL),
		LLMModel:    lookup("LLM_MODEL", defaultLLMModel),
		S3Bucket:    lookup("S3_BUCKET_NAME", ""),
		AWSRegion:   lookup("AWS_REGION", "us-east-1"),
	}

	var err error
	if cfg.MigrationsOn, err = strconv.ParseBool(lookup("RUN_MIGRATIONS", "true")); err != nil {
		return nil, ValidationError{Field: "RUN_MIGRATIONS", Message: err.Error()}
	}
	if cfg.TokenTTL, err = time.ParseDuration(lookup("TOKEN_TTL", "168h")); err != nil {
		return nil, ValidationError{Field: "TOKEN_TTL", Message: err.Error()}
	}
	if cfg.LLMTimeout, err = time.ParseDuration(lookup("LLM_TIMEOUT", "60s")); err != nil {
		return nil, ValidationError{Field: "LLM_TIMEOUT", Message: err.Error()}
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(lookup("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return nil, ValidationError{Field: "SHUTDOWN_TIMEOUT", Message: err.Error()}
	}
	if cfg.EstimatesPerHour, err = strconv.Atoi(lookup("ESTIMATES_PER_HOUR", "30")); err != nil {
		return nil, ValidationError{Field: "ESTIMATES_PER_HOUR", Message: err.Error()}
	}

	origins := lookup("CORS_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// PostgresDSN returns the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// lookup reads name from the environment, then from the secrets directory, then falls back to def.
func lookup(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	if v := readSecret(strings.ToLower(name)); v != "" {
		return v
	}
	return def
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
