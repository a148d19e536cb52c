package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/google/uuid"
	"github.com/meltforce/pulsefit/internal/models"
	_ "modernc.org/sqlite"
)

// timeLayout has fixed-width fractional seconds so stored timestamps sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqlConn is satisfied by *sql.DB and *sql.Tx.
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteBackend runs queries on q. db is nil for a backend bound to a
// transaction.
type sqliteBackend struct {
	db *sql.DB
	q  sqlConn
}

// openSQLite creates the parent directory, migrates and opens the database file.
func openSQLite(path string) (*sqliteBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if err := runMigrations("sqlite", "sqlite://"+path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	return &sqliteBackend{db: db, q: db}, nil
}

func (s *sqliteBackend) get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return v, nil
}

func (s *sqliteBackend) put(ctx context.Context, key, value string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value,
		 updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *sqliteBackend) deleteKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM kv WHERE key IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("deleting keys: %w", err)
	}
	return nil
}

func (s *sqliteBackend) insertSession(ctx context.Context, r models.SessionRecord) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO session_history (id, workout_id, workout_title, intensity, started_at, ended_at,
		 elapsed_seconds, exercises_done, total_exercises, completed, calories_burned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.WorkoutID, r.WorkoutTitle, string(r.Intensity),
		r.StartedAt.UTC().Format(timeLayout), r.EndedAt.UTC().Format(timeLayout),
		r.ElapsedSeconds, r.ExercisesDone, r.TotalExercises, r.Completed, r.CaloriesBurned)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (s *sqliteBackend) listSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, workout_id, workout_title, intensity, started_at, ended_at,
		 elapsed_seconds, exercises_done, total_exercises, completed, calories_burned
		 FROM session_history ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionRecord
	for rows.Next() {
		var (
			r                  models.SessionRecord
			id, intensity      string
			startedAt, endedAt string
		)
		if err := rows.Scan(&id, &r.WorkoutID, &r.WorkoutTitle, &intensity, &startedAt, &endedAt,
			&r.ElapsedSeconds, &r.ExercisesDone, &r.TotalExercises, &r.Completed, &r.CaloriesBurned); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing session id: %w", err)
		}
		r.Intensity = models.Intensity(intensity)
		if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if r.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, fmt.Errorf("parsing ended_at: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *sqliteBackend) withTx(ctx context.Context, fn func(backend) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(&sqliteBackend{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *sqliteBackend) close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
