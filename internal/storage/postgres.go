package storage

import (
	"context"
	"errors"
	"fmt"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meltforce/pulsefit/internal/models"
)

// pgxConn is satisfied by *pgxpool.Pool and pgx.Tx.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresBackend runs queries on q. pool is nil for a backend bound to a
// transaction.
type postgresBackend struct {
	pool *pgxpool.Pool
	q    pgxConn
}

// openPostgres migrates the schema and opens a connection pool.
func openPostgres(ctx context.Context, dsn string) (*postgresBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	if err := runMigrations("postgres", dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &postgresBackend{pool: pool, q: pool}, nil
}

func (p *postgresBackend) get(ctx context.Context, key string) (string, error) {
	var v string
	err := p.q.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return v, nil
}

func (p *postgresBackend) put(ctx context.Context, key, value string) error {
	_, err := p.q.Exec(ctx,
		`INSERT INTO kv (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (p *postgresBackend) deleteKeys(ctx context.Context, keys []string) error {
	if _, err := p.q.Exec(ctx, `DELETE FROM kv WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("deleting keys: %w", err)
	}
	return nil
}

func (p *postgresBackend) insertSession(ctx context.Context, r models.SessionRecord) error {
	_, err := p.q.Exec(ctx,
		`INSERT INTO session_history (id, workout_id, workout_title, intensity, started_at, ended_at,
		 elapsed_seconds, exercises_done, total_exercises, completed, calories_burned)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		r.ID, r.WorkoutID, r.WorkoutTitle, string(r.Intensity), r.StartedAt, r.EndedAt,
		r.ElapsedSeconds, r.ExercisesDone, r.TotalExercises, r.Completed, r.CaloriesBurned)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (p *postgresBackend) listSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	rows, err := p.q.Query(ctx,
		`SELECT id, workout_id, workout_title, intensity, started_at, ended_at,
		 elapsed_seconds, exercises_done, total_exercises, completed, calories_burned
		 FROM session_history ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionRecord
	for rows.Next() {
		var (
			r         models.SessionRecord
			intensity string
		)
		if err := rows.Scan(&r.ID, &r.WorkoutID, &r.WorkoutTitle, &intensity, &r.StartedAt, &r.EndedAt,
			&r.ElapsedSeconds, &r.ExercisesDone, &r.TotalExercises, &r.Completed, &r.CaloriesBurned); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		r.Intensity = models.Intensity(intensity)
		result = append(result, r)
	}
	return result, rows.Err()
}

func (p *postgresBackend) withTx(ctx context.Context, fn func(backend) error) error {
	if p.pool == nil {
		return fn(p)
	}
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		return fn(&postgresBackend{q: tx})
	})
}

func (p *postgresBackend) close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
