package store

import "fmt"

// Schema DDL per driver. The api_keys table is created first since users
// carries a foreign key to it. The user_id column on api_keys is a plain
// nullable column, not a constraint: a circular FK between the two tables
// would make inserts order-dependent.
var migrations = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS api_keys (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			api_key TEXT UNIQUE NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			user_id INTEGER,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			firstname TEXT NOT NULL,
			lastname TEXT NOT NULL,
			email TEXT NOT NULL,
			start_date DATETIME NOT NULL,
			last_date DATETIME,
			apikey_id INTEGER NOT NULL REFERENCES api_keys(id)
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_apikey_id ON users(apikey_id)`,
	},

	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS api_keys (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			api_key VARCHAR(64) NOT NULL UNIQUE,
			status VARCHAR(16) NOT NULL DEFAULT 'active',
			user_id BIGINT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			firstname VARCHAR(255) NOT NULL,
			lastname VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			start_date DATE NOT NULL,
			last_date DATE NULL,
			apikey_id BIGINT NOT NULL,
			CONSTRAINT fk_users_apikey FOREIGN KEY (apikey_id) REFERENCES api_keys(id),
			INDEX idx_users_apikey_id (apikey_id)
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},

	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS api_keys (
			id BIGSERIAL PRIMARY KEY,
			api_key TEXT UNIQUE NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			user_id BIGINT,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			firstname TEXT NOT NULL,
			lastname TEXT NOT NULL,
			email TEXT NOT NULL,
			start_date DATE NOT NULL,
			last_date DATE,
			apikey_id BIGINT NOT NULL REFERENCES api_keys(id)
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id BIGSERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_apikey_id ON users(apikey_id)`,
	},
}

func (s *Store) migrate() error {
	stmts, ok := migrations[s.driver]
	if !ok {
		return fmt.Errorf("no migrations for driver %q", s.driver)
	}
	for _, m := range stmts {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
