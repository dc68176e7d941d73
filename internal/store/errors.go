package store

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested row does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint,
// e.g. creating a second admin with the same email.
var ErrDuplicate = errors.New("duplicate entry")

// isUniqueViolation reports whether err is a unique-constraint violation on
// any of the supported drivers. MySQL and Postgres expose structured error
// codes; modernc sqlite only exposes the message text.
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062 // ER_DUP_ENTRY
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}
