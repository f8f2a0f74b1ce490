package sqlstore

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// PostgreSQL error codes the store reacts to.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// dialect captures what differs between SQLite and PostgreSQL.
type dialect struct {
	name string

	// schema is applied statement by statement on startup.
	schema []string

	// lockSuffix is appended to a single-row SELECT to hold the row for the
	// rest of the transaction.
	lockSuffix string

	// txOptions is passed to BeginTx.
	txOptions *sql.TxOptions
}

var sqliteDialect = &dialect{
	name:   DriverSQLite,
	schema: sqliteSchema,
	// SQLite runs on a single connection, so transactions never overlap.
	lockSuffix: "",
	txOptions:  nil,
}

func postgresDialect(driver string) *dialect {
	return &dialect{
		name:       driver,
		schema:     postgresSchema,
		lockSuffix: " FOR UPDATE",
		txOptions:  &sql.TxOptions{Isolation: sql.LevelSerializable},
	}
}

// pgCode extracts a PostgreSQL SQLSTATE from either driver's error type.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	if pgCode(err) == pgUniqueViolation {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// isRetryable reports whether a transaction failed only because it raced
// another one and can safely be run again.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_BUSY
	}
	return false
}
