package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Default PBKDF2 iteration count. Clients registered under one count keep
// working if the default changes, because the count is fixed per deployment
// and hashes are recomputed only at registration.
const DefaultPBKDF2Iterations = 100000

// Config holds validated environment configuration
type Config struct {
	// Listen address
	Host string
	Port string

	// Persistence
	DatabasePath string

	// Credential hashing
	PBKDF2Iterations int

	// Optional variables with defaults
	LogLevel        string
	DevelopmentMode bool
	AllowedOrigins  []string
	SeedSampleData  bool

	// Rate Limits (format: "<count>-<period>", e.g. "100-M")
	RateLimitWsIP string
}

// ValidateEnv validates all required environment variables and returns a Config object.
// Returns an error if any variable is present but invalid.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errs []string

	// Optional: HOST (defaults to localhost)
	cfg.Host = getEnvOrDefault("HOST", "localhost")

	// Optional: PORT (defaults to 8765, must be a valid port if set)
	cfg.Port = getEnvOrDefault("PORT", "8765")
	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got '%s')", cfg.Port))
	}

	// Optional: DATABASE_PATH (defaults to a file next to the binary)
	cfg.DatabasePath = getEnvOrDefault("DATABASE_PATH", "messenger.db")

	// Optional: PBKDF2_ITERATIONS (defaults to 100000, must be positive)
	iterStr := getEnvOrDefault("PBKDF2_ITERATIONS", strconv.Itoa(DefaultPBKDF2Iterations))
	iter, err := strconv.Atoi(iterStr)
	if err != nil || iter < 1 {
		errs = append(errs, fmt.Sprintf("PBKDF2_ITERATIONS must be a positive integer (got '%s')", iterStr))
	} else {
		cfg.PBKDF2Iterations = iter
	}

	// Optional: LOG_LEVEL (defaults to "info")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.DevelopmentMode = os.Getenv("DEVELOPMENT_MODE") == "true"
	cfg.SeedSampleData = os.Getenv("SEED_SAMPLE_DATA") == "true"

	// Optional: ALLOWED_ORIGINS (comma-separated list of origins)
	cfg.AllowedOrigins = parseOrigins(os.Getenv("ALLOWED_ORIGINS"), []string{"http://localhost:3000"})

	// Rate Limits (Defaults: M = Minute, H = Hour)
	cfg.RateLimitWsIP = getEnvOrDefault("RATE_LIMIT_WS_IP", "100-M")

	if len(errs) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	logValidatedConfig(cfg)

	return cfg, nil
}

// ListenAddr returns the host:port pair the server binds to.
func (c *Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}

// parseOrigins splits a comma-separated origin list, falling back to
// defaults when the variable is unset or empty.
func parseOrigins(raw string, defaults []string) []string {
	if raw == "" {
		return defaults
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return defaults
	}
	return origins
}

// logValidatedConfig logs the validated configuration
func logValidatedConfig(cfg *Config) {
	slog.Info("Environment configuration validated")
	slog.Info("Configuration",
		"host", cfg.Host,
		"port", cfg.Port,
		"database_path", cfg.DatabasePath,
		"pbkdf2_iterations", cfg.PBKDF2Iterations,
		"log_level", cfg.LogLevel,
		"development_mode", cfg.DevelopmentMode,
		"seed_sample_data", cfg.SeedSampleData,
		"allowed_origins", strings.Join(cfg.AllowedOrigins, ","),
		"rate_limit_ws_ip", cfg.RateLimitWsIP,
	)
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
