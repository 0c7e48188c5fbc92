// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"APP_DB_PATH" envDefault:"./data/adminpanel.db"`
	SessionSecret string `env:"APP_SESSION_SECRET,required"`
	ServerHost    string `env:"APP_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"APP_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"APP_ENV" envDefault:"development"`
	LogLevel      string `env:"APP_LOG_LEVEL" envDefault:"info"`

	// Upstream user API
	APIBaseURL string        `env:"APP_API_BASE_URL" envDefault:"http://localhost:3000"`
	APITimeout time.Duration `env:"APP_API_TIMEOUT" envDefault:"15s"`

	// Session storage
	SessionLifetime time.Duration `env:"APP_SESSION_LIFETIME" envDefault:"24h"`
	RedisURL        string        `env:"APP_REDIS_URL"`                           // Optional Redis URL for session storage
	RedisPrefix     string        `env:"APP_REDIS_PREFIX" envDefault:"adminpanel:"` // Redis key prefix

	// UI defaults
	Theme string `env:"APP_THEME" envDefault:"light"`

	// EnforceRouteRules turns the "rule" route metadata into an ACL check.
	EnforceRouteRules bool `env:"APP_ENFORCE_ROUTE_RULES" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisSessions returns true if sessions should be kept in Redis.
func (c Config) UseRedisSessions() bool {
	return c.RedisURL != ""
}

// SlogLevel maps LogLevel onto a slog.Level. Unknown values yield Info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("APP_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("APP_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("APP_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("APP_API_BASE_URL must not be empty")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
