// Package sqlstore provides a SQL-backed implementation of the storage.Store
// interface. The same queries run on SQLite (modernc, no CGO) and PostgreSQL
// (lib/pq or pgx); placeholders are rebound per driver by sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitledger/internal/storage"
)

// maxTxAttempts bounds how often a transaction that lost a serialization
// race is re-run.
const maxTxAttempts = 4

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store implements storage.Store on top of a *sqlx.DB.
type Store struct {
	*queries
	db      *sqlx.DB
	dialect *dialect
}

// Open connects to the database for the given driver and runs migrations.
// For sqlite the dsn is a file path; for postgres and pgx it is a
// connection URL.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLite(ctx, dsn)
	case DriverPostgres, DriverPgx:
		return NewPostgres(ctx, driver, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewSQLite creates a Store backed by the SQLite file at dbPath.
// It creates the parent directories and runs migrations automatically.
func NewSQLite(ctx context.Context, dbPath string) (*Store, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: every transaction runs alone, which is what keeps
	// membership checks and share writes race-free on SQLite.
	db.SetMaxOpenConns(1)

	return newStore(ctx, db, sqliteDialect)
}

// NewPostgres creates a Store backed by PostgreSQL. driver is either
// "postgres" (lib/pq) or "pgx".
func NewPostgres(ctx context.Context, driver, databaseURL string) (*Store, error) {
	db, err := sqlx.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return newStore(ctx, db, postgresDialect(driver))
}

func newStore(ctx context.Context, db *sqlx.DB, d *dialect) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := runMigrations(ctx, db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{
		queries: &queries{ext: db, dialect: d},
		db:      db,
		dialect: d,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn in a transaction, re-running it when PostgreSQL aborts the
// transaction with a serialization failure or deadlock.
func (s *Store) WithTx(ctx context.Context, fn func(q storage.Queries) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		slog.Warn("retrying transaction", "attempt", attempt, "driver", s.dialect.name, "error", err)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(q storage.Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, s.dialect.txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{ext: tx, dialect: s.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queries runs statements against either the pool or an open transaction.
type queries struct {
	ext     sqlx.ExtContext
	dialect *dialect
}

// atomic runs fn in a transaction unless q already is one.
func (q *queries) atomic(ctx context.Context, fn func(q *queries) error) error {
	db, ok := q.ext.(*sqlx.DB)
	if !ok {
		return fn(q)
	}

	tx, err := db.BeginTxx(ctx, q.dialect.txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{ext: tx, dialect: q.dialect}); err != nil {
		return err
	}
	return tx.Commit()
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
}

func (q *queries) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q *queries) sel(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

// selIn expands a slice argument into an IN list before selecting.
func (q *queries) selIn(ctx context.Context, dest any, query string, args ...any) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return q.sel(ctx, dest, query, args...)
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}

// dedupe drops blank and repeated ids while keeping their first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// sortedMembers dedupes ids and sorts them ascending.
func sortedMembers(ids []string) []string {
	out := dedupe(ids)
	sort.Strings(out)
	return out
}
