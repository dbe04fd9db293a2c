// Package config handles configuration for the server component,
// including defaults, environment (.env) overlay, JSON overlay and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the todo server.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the public REST API.
//   - EndpointAddrGRPC: bind address of the gRPC health endpoint.
//   - DatabaseDriver / DatabaseDSN: "pgx" (PostgreSQL) or "sqlite" and its DSN.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - BcryptCost: work factor of password hashes.
//   - CORSOrigins: allowed browser origins.
//   - RequestTimeout: per-request deadline enforced by the HTTP layer.
type Config struct {
	EndpointAddrHTTP             string        `env:"HTTP_ADDR"`
	EndpointAddrGRPC             string        `env:"GRPC_ADDR"`
	DatabaseDriver               string        `env:"DATABASE_DRIVER"`
	DatabaseDSN                  string        `env:"DATABASE_URL"`
	SecretKey                    string        `env:"JWT_SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRES"`
	RefreshTokenValidityDuration time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRES"`
	BcryptCost                   int           `env:"BCRYPT_COST"`
	CORSOrigins                  []string      `env:"CORS_ORIGINS" envSeparator:","`
	RequestTimeout               time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel                     string        `env:"LOG_LEVEL"`
	LogFormat                    string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = dbx.DriverSQLite
	c.DatabaseDSN = "todo.db"
	c.SecretKey = "dev-jwt-secret-key"
	c.AccessTokenValidityDuration = 900 * time.Second
	c.RefreshTokenValidityDuration = 604800 * time.Second
	c.BcryptCost = bcrypt.DefaultCost
	c.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case dbx.DriverPostgres, dbx.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database driver must be %q or %q, got %q", dbx.DriverPostgres, dbx.DriverSQLite, c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.AccessTokenValidityDuration <= 0 || c.RefreshTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("token validity durations must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (a .env file in the working directory is loaded
// first when present), an optional JSON file and finally command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
