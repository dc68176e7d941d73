package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file shape. Durations are strings in
// time.ParseDuration syntax ("30s", "1h", "720h"). Every field is optional;
// set fields override the defaults already in the target Config.
type fileConfig struct {
	Server   serverYAML   `yaml:"server"`
	Database databaseYAML `yaml:"database"`
	Auth     authYAML     `yaml:"auth"`
	Keys     keysYAML     `yaml:"keys"`
}

type serverYAML struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	StaticDir       string   `yaml:"static_dir"`
	CORSOrigins     []string `yaml:"cors_origins"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
}

type databaseYAML struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

type authYAML struct {
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
}

type keysYAML struct {
	Prefix string `yaml:"prefix"`
	TTL    string `yaml:"ttl"`
}

// LoadFile reads a YAML config file and applies its set fields onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.Server.Host != "" {
		cfg.Server.Host = fc.Server.Host
	}
	if fc.Server.Port != 0 {
		cfg.Server.Port = fc.Server.Port
	}
	if fc.Server.StaticDir != "" {
		cfg.Server.StaticDir = fc.Server.StaticDir
	}
	if len(fc.Server.CORSOrigins) > 0 {
		cfg.Server.CORSOrigins = fc.Server.CORSOrigins
	}
	if err := applyDuration(&cfg.Server.ShutdownTimeout, fc.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
		return err
	}

	if fc.Database.Driver != "" {
		cfg.Database.Driver = fc.Database.Driver
	}
	if fc.Database.DSN != "" {
		cfg.Database.DSN = fc.Database.DSN
	}
	if fc.Database.MaxOpenConns != 0 {
		cfg.Database.MaxOpenConns = fc.Database.MaxOpenConns
	}
	if fc.Database.MaxIdleConns != 0 {
		cfg.Database.MaxIdleConns = fc.Database.MaxIdleConns
	}
	if err := applyDuration(&cfg.Database.ConnMaxLifetime, fc.Database.ConnMaxLifetime, "database.conn_max_lifetime"); err != nil {
		return err
	}

	if fc.Auth.JWTSecret != "" {
		cfg.Auth.JWTSecret = fc.Auth.JWTSecret
	}
	if err := applyDuration(&cfg.Auth.TokenTTL, fc.Auth.TokenTTL, "auth.token_ttl"); err != nil {
		return err
	}

	if fc.Keys.Prefix != "" {
		cfg.Keys.Prefix = fc.Keys.Prefix
	}
	if err := applyDuration(&cfg.Keys.TTL, fc.Keys.TTL, "keys.ttl"); err != nil {
		return err
	}

	return nil
}

func applyDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", field, err)
	}
	*dst = d
	return nil
}
