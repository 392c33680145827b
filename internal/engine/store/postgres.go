package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_profile/internal/engine"
	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
)

//go:embed schema/*.sql
var schemaFS embed.FS

var _ Store = (*Postgres)(nil)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool, retrying transient connect failures,
// and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := retryConnect(ctx, func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("create pgx pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}

	db := &Postgres{pool: pool}
	if err := db.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("profile postgres connected", slog.String("addr", config.ConnConfig.Host))
	return db, nil
}

// retryConnect calls connect with exponential backoff. An error reported by
// the server (bad credentials, missing database) is not retried.
func retryConnect[T any](ctx context.Context, connect func(context.Context) (T, error), opts ...backoff.RetryOption) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 8 * time.Second

	operation := func() (T, error) {
		v, err := connect(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, wait time.Duration) {
		slog.Debug("postgres connect failed, retrying", slog.Duration("wait", wait), slog.Any("error", err))
	}
	opts = append([]backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(5),
		backoff.WithMaxElapsedTime(time.Minute),
		backoff.WithNotify(notify),
	}, opts...)
	return backoff.Retry(ctx, operation, opts...)
}

func (db *Postgres) Close() error {
	db.pool.Close()
	return nil
}

func (db *Postgres) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := db.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Info("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

func (db *Postgres) Save(ctx context.Context, ex assemble.Extraction) error {
	r, err := newRecord(ex, time.Now())
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO profiles (username, name, headline, run_id, meaningful, extracted_at, saved_at, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (username) DO UPDATE SET
		   name = EXCLUDED.name, headline = EXCLUDED.headline, run_id = EXCLUDED.run_id,
		   meaningful = EXCLUDED.meaningful, extracted_at = EXCLUDED.extracted_at,
		   saved_at = EXCLUDED.saved_at, data = EXCLUDED.data`,
		r.username, r.summary.Name, r.summary.Headline, r.summary.RunID, r.summary.MeaningfulData,
		r.summary.ExtractedAt, r.summary.SavedAt, r.data,
	)
	if err != nil {
		engine.IncrStoreErrors()
		return fmt.Errorf("store: save %s: %w", r.username, err)
	}
	engine.IncrStoreSaves()
	return nil
}

func (db *Postgres) Load(ctx context.Context, username string) (assemble.Extraction, error) {
	username = engine.NormUsername(username)
	var data []byte
	err := db.pool.QueryRow(ctx, `SELECT data FROM profiles WHERE username = $1`, username).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return assemble.Extraction{}, fmt.Errorf("%s: %w", username, ErrNotFound)
	}
	if err != nil {
		return assemble.Extraction{}, fmt.Errorf("store: load %s: %w", username, err)
	}
	return decode(username, data)
}

func (db *Postgres) List(ctx context.Context, limit int) ([]Summary, error) {
	query := `SELECT username, name, headline, run_id, meaningful, extracted_at, saved_at
		FROM profiles ORDER BY saved_at DESC, username`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.Username, &sm.Name, &sm.Headline, &sm.RunID, &sm.MeaningfulData, &sm.ExtractedAt, &sm.SavedAt); err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}
