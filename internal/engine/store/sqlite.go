package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_profile/internal/engine"
	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
)

var _ Store = (*SQLite)(nil)

// sqliteTime is fixed-width so text order is time order.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is a single-file Store.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS profiles (
		username     TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		headline     TEXT NOT NULL DEFAULT '',
		run_id       TEXT NOT NULL,
		meaningful   INTEGER NOT NULL,
		extracted_at TEXT NOT NULL,
		saved_at     TEXT NOT NULL,
		data         TEXT NOT NULL
	)`)
	return err
}

func (s *SQLite) Save(ctx context.Context, ex assemble.Extraction) error {
	r, err := newRecord(ex, s.now())
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO profiles
		(username, name, headline, run_id, meaningful, extracted_at, saved_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			name = excluded.name, headline = excluded.headline, run_id = excluded.run_id,
			meaningful = excluded.meaningful, extracted_at = excluded.extracted_at,
			saved_at = excluded.saved_at, data = excluded.data`,
		r.username, r.summary.Name, r.summary.Headline, r.summary.RunID, r.summary.MeaningfulData,
		r.summary.ExtractedAt.Format(sqliteTime), r.summary.SavedAt.Format(sqliteTime), string(r.data),
	)
	if err != nil {
		engine.IncrStoreErrors()
		return fmt.Errorf("store: save %s: %w", r.username, err)
	}
	engine.IncrStoreSaves()
	return nil
}

func (s *SQLite) Load(ctx context.Context, username string) (assemble.Extraction, error) {
	username = engine.NormUsername(username)
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE username = ?`, username).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return assemble.Extraction{}, fmt.Errorf("%s: %w", username, ErrNotFound)
	}
	if err != nil {
		return assemble.Extraction{}, fmt.Errorf("store: load %s: %w", username, err)
	}
	return decode(username, []byte(data))
}

func (s *SQLite) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT username, name, headline, run_id, meaningful, extracted_at, saved_at
		FROM profiles ORDER BY saved_at DESC, username LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var extractedAt, savedAt string
		if err := rows.Scan(&sm.Username, &sm.Name, &sm.Headline, &sm.RunID, &sm.MeaningfulData, &extractedAt, &savedAt); err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		sm.ExtractedAt, _ = time.Parse(time.RFC3339Nano, extractedAt)
		sm.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
