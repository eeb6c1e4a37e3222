// Package config provides configuration management for the organization manager.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// ServerConfig holds server-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment Environment
	Port        int

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// JWKSURL is the remote signing key set endpoint for ES256 tokens.
	JWKSURL string
	// JWTSecret is the shared secret for legacy HS256 tokens. Optional.
	JWTSecret string
	// JWTIssuer, when set, must match the token's iss claim.
	JWTIssuer string
	// JWTAudience, when set, must match the token's aud claim.
	JWTAudience string

	// CORSOrigins is the list of allowed origins. Empty allows all in dev.
	CORSOrigins []string

	RateLimitRequests int64
	RateLimitPeriod   string
	MaxBodyBytes      int64
}

// LoadServerConfig reads server configuration from environment variables.
// It fails when the database URL is missing or when neither a JWKS URL nor a
// shared secret is configured, since no token could ever verify.
func LoadServerConfig() (ServerConfig, error) {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	cfg := ServerConfig{
		Environment:       env,
		Port:              getEnvInt("PORT", 8080),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWKSURL:           os.Getenv("JWKS_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTIssuer:         os.Getenv("JWT_ISSUER"),
		JWTAudience:       os.Getenv("JWT_AUDIENCE"),
		CORSOrigins:       getEnvList("CORS_ORIGINS"),
		RateLimitRequests: int64(getEnvInt("RATE_LIMIT_REQUESTS", 100)),
		RateLimitPeriod:   getEnvDefault("RATE_LIMIT_PERIOD", "1m"),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.JWKSURL == "" && cfg.JWTSecret == "" {
		return cfg, errors.New("at least one of JWKS_URL or JWT_SECRET must be set")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = 8080
	}
	if cfg.RateLimitRequests <= 0 {
		cfg.RateLimitRequests = 100
	}

	return cfg, nil
}

// getEnvDefault reads a string from an environment variable, returning the default if unset.
func getEnvDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvList reads a comma-separated list from an environment variable.
func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
