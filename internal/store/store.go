package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lilalabs/keygate/internal/model"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options configures the database connection.
type Options struct {
	Driver          string
	DSN             string // empty with DriverSQLite opens an in-memory database
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store persists API keys, users, and admin accounts. All shared state lives
// here; handlers hold no cross-request state of their own. Queries are
// written with ? placeholders and rebound per driver.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database, applies the pool settings, and runs schema
// migrations. The caller owns the returned Store and must Close it.
func Open(opts Options) (*Store, error) {
	driverName, dsn, err := resolveDSN(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// SQLite doesn't support concurrent writes.
		db.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	s := &Store{db: db, driver: opts.Driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// resolveDSN maps the configured driver to the registered sql driver name and
// normalizes the DSN.
func resolveDSN(driver, dsn string) (string, string, error) {
	switch driver {
	case DriverMySQL:
		// parseTime is required to scan DATETIME/DATE columns into time.Time.
		if !strings.Contains(dsn, "parseTime") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "parseTime=true"
		}
		return "mysql", dsn, nil
	case DriverPostgres:
		return "pgx", dsn, nil
	case DriverSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
		return "sqlite", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// insertRow executes a named INSERT and returns the generated row id.
// Postgres has no LastInsertId, so the query grows a RETURNING clause there.
func (s *Store) insertRow(ctx context.Context, query string, arg interface{}) (int64, error) {
	if s.driver == DriverPostgres {
		rows, err := s.db.NamedQueryContext(ctx, query+" RETURNING id", arg)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		var id int64
		if rows.Next() {
			if err := rows.Scan(&id); err != nil {
				return 0, err
			}
		}
		return id, rows.Err()
	}

	result, err := s.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ---------------------------------------------------------------------------
// API keys
// ---------------------------------------------------------------------------

// CreateAPIKey inserts a new API key row. The ID field is populated after a
// successful insert.
func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	key.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO api_keys (api_key, status, user_id, expires_at, created_at)
		VALUES (:api_key, :status, :user_id, :expires_at, :created_at)`

	id, err := s.insertRow(ctx, q, key)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert api key: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert api key: %w", err)
	}
	key.ID = id
	return nil
}

// GetAPIKey returns an API key by ID.
func (s *Store) GetAPIKey(ctx context.Context, id int64) (*model.APIKey, error) {
	var key model.APIKey
	q := s.db.Rebind("SELECT * FROM api_keys WHERE id = ?")
	if err := s.db.GetContext(ctx, &key, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api key: %w", err)
	}
	return &key, nil
}

// ListAPIKeys returns all API keys, newest first.
func (s *Store) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	if err := s.db.SelectContext(ctx, &keys, "SELECT * FROM api_keys ORDER BY id DESC"); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// RevokeAPIKey marks a key inactive by ID. No current-status precondition is
// checked: revoking an already-inactive key succeeds, so the operation is
// idempotent. Zero affected rows means the key does not exist.
func (s *Store) RevokeAPIKey(ctx context.Context, id int64) error {
	q := s.db.Rebind("UPDATE api_keys SET status = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, q, model.KeyStatusInactive, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke api key rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// CreateUser inserts a registered user. The ID field is populated after a
// successful insert. Email uniqueness is intentionally not enforced.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	const q = `INSERT INTO users (firstname, lastname, email, start_date, last_date, apikey_id)
		VALUES (:firstname, :lastname, :email, :start_date, :last_date, :apikey_id)`

	id, err := s.insertRow(ctx, q, user)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return nil
}

// ListUsers returns all registered users.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ---------------------------------------------------------------------------
// Admins
// ---------------------------------------------------------------------------

// CreateAdmin inserts a new admin account. A duplicate email surfaces as
// ErrDuplicate so callers can distinguish it from generic store failures.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO admins (email, password_hash, created_at)
		VALUES (:email, :password_hash, :created_at)`

	id, err := s.insertRow(ctx, q, admin)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert admin: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	admin.ID = id
	return nil
}

// GetAdminByEmail returns an admin by email address.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT * FROM admins WHERE email = ?")
	if err := s.db.GetContext(ctx, &admin, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all admin accounts.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY email"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// HasAnyAdmin reports whether at least one admin account exists. Used at
// startup to warn when the admin API is unreachable by anyone.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}
