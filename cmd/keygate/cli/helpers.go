package cli

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/lilalabs/keygate/internal/config"
	"github.com/lilalabs/keygate/internal/store"
)

// loadConfig builds the runtime configuration: defaults, then the config
// file viper located, then KEYGATE_* environment overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Default()

	if file := viper.ConfigFileUsed(); file != "" {
		if err := config.LoadFile(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyViper(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyViper overlays set viper values (environment, bound flags) onto cfg.
func applyViper(cfg *config.Config) error {
	if v := viper.GetString("server.host"); v != "" {
		cfg.Server.Host = v
	}
	if v := viper.GetInt("server.port"); v != 0 {
		cfg.Server.Port = v
	}
	if v := viper.GetString("server.static_dir"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := viper.GetStringSlice("server.cors_origins"); len(v) > 0 {
		cfg.Server.CORSOrigins = v
	}
	if err := overlayDuration(&cfg.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
		return err
	}

	if v := viper.GetString("database.driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := viper.GetString("database.dsn"); v != "" {
		cfg.Database.DSN = v
	}
	if v := viper.GetInt("database.max_open_conns"); v != 0 {
		cfg.Database.MaxOpenConns = v
	}
	if v := viper.GetInt("database.max_idle_conns"); v != 0 {
		cfg.Database.MaxIdleConns = v
	}
	if err := overlayDuration(&cfg.Database.ConnMaxLifetime, "database.conn_max_lifetime"); err != nil {
		return err
	}

	if v := viper.GetString("auth.jwt_secret"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if err := overlayDuration(&cfg.Auth.TokenTTL, "auth.token_ttl"); err != nil {
		return err
	}

	if v := viper.GetString("keys.prefix"); v != "" {
		cfg.Keys.Prefix = v
	}
	if err := overlayDuration(&cfg.Keys.TTL, "keys.ttl"); err != nil {
		return err
	}

	return nil
}

func overlayDuration(dst *time.Duration, key string) error {
	raw := viper.GetString(key)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = d
	return nil
}

// openStore opens the credential store from the loaded configuration.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
