package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/lilalabs/keygate/internal/store"
)

// Config is the full runtime configuration. It is built once at process
// start (defaults, then optional config file, then environment/flags) and
// handed to each component explicitly; nothing reads configuration from
// ambient globals after startup.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Keys     KeysConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string
	Port            int
	StaticDir       string // directory of static assets to serve, "" disables
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// DatabaseConfig controls the credential store connection and its pool.
type DatabaseConfig struct {
	Driver          string // mysql, postgres, or sqlite
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig controls admin session tokens. JWTSecret has no default:
// startup fails when it is unset rather than falling back to a baked-in
// value.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// KeysConfig controls issued API keys.
type KeysConfig struct {
	Prefix string
	TTL    time.Duration
}

// Default returns the configuration defaults. The database DSN and the JWT
// secret are deliberately left empty; Validate rejects them.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			StaticDir:       "public",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          store.DriverMySQL,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL: time.Hour,
		},
		Keys: KeysConfig{
			Prefix: "Lila_secr3t_",
			TTL:    30 * 24 * time.Hour,
		},
	}
}

// Validate checks the configuration is complete enough to start the server.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required: set KEYGATE_AUTH_JWT_SECRET or the config file; refusing to run with an empty signing secret")
	}
	switch c.Database.Driver {
	case store.DriverMySQL, store.DriverPostgres, store.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database.driver %q (want mysql, postgres, or sqlite)", c.Database.Driver)
	}
	if c.Database.Driver != store.DriverSQLite && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
	}
	if c.Keys.Prefix == "" {
		return errors.New("keys.prefix must not be empty")
	}
	if c.Keys.TTL <= 0 {
		return errors.New("keys.ttl must be positive")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}

// StoreOptions maps the database section onto store.Options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:          c.Database.Driver,
		DSN:             c.Database.DSN,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}
