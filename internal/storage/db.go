// Package storage persists the user's profile, daily metrics, streak, weekly
// activity, milestones and workout history. Values live in a small
// key-value table so the same accessors work on SQLite and PostgreSQL.
package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/meltforce/pulsefit/internal/models"
)

//go:embed migrations
var migrationsFS embed.FS

// ErrNotFound is returned by backends for a missing key.
var ErrNotFound = errors.New("not found")

// Driver selects a storage backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Options configures Open.
type Options struct {
	Driver      Driver
	SQLitePath  string
	PostgresDSN string
}

// backend is the minimal persistence surface each driver implements.
type backend interface {
	get(ctx context.Context, key string) (string, error)
	put(ctx context.Context, key, value string) error
	deleteKeys(ctx context.Context, keys []string) error
	insertSession(ctx context.Context, rec models.SessionRecord) error
	listSessions(ctx context.Context, limit int) ([]models.SessionRecord, error)
	// withTx runs fn on a backend bound to one transaction, committing when
	// fn returns nil. A backend already in a transaction passes itself.
	withTx(ctx context.Context, fn func(backend) error) error
	close() error
}

// DB provides typed accessors over a backend.
type DB struct {
	b   backend
	now func() time.Time
}

// Open runs pending migrations and connects the configured backend.
func Open(ctx context.Context, opts Options) (*DB, error) {
	var (
		b   backend
		err error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		b, err = openSQLite(opts.SQLitePath)
	case DriverPostgres:
		b, err = openPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return &DB{b: b, now: time.Now}, nil
}

// inTx runs fn against a DB whose reads and writes share one transaction.
func (db *DB) inTx(ctx context.Context, fn func(tx *DB) error) error {
	return db.b.withTx(ctx, func(b backend) error {
		return fn(&DB{b: b, now: db.now})
	})
}

// Close releases the backend.
func (db *DB) Close() error {
	return db.b.close()
}

// runMigrations applies all pending migrations in migrations/<dir>.
func runMigrations(dir, databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+dir)
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
