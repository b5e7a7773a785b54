package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuiz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Fixed-width UTC timestamps keep text ordering equal to time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite wraps SQLite access for the profile blob and game history.
type SQLite struct {
	db *sql.DB
}

var _ Backend = (*SQLite)(nil)

// OpenSQLite opens or creates the SQLite database and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLite{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			score INTEGER NOT NULL,
			questions INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			category TEXT NOT NULL,
			timed_out INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the blob stored under key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Set upserts the blob stored under key.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(timeLayout))
	return err
}

// Delete removes key; a missing key is not an error.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// AppendGame stores a finished game.
func (s *SQLite) AppendGame(ctx context.Context, rec model.GameRecord) error {
	timedOut := 0
	if rec.TimedOut {
		timedOut = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, started_at, ended_at, score, questions, difficulty, category, timed_out)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.EndedAt.UTC().Format(timeLayout),
		rec.Score,
		rec.Questions,
		rec.Difficulty,
		rec.Category,
		timedOut,
	)
	return err
}

// ListGames returns games filtered by stats config.
func (s *SQLite) ListGames(ctx context.Context, cfg model.StatsConfig) ([]model.GameRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, score, questions, difficulty, category, timed_out
		FROM games
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var games []model.GameRecord
	for rows.Next() {
		var rec model.GameRecord
		var startedAt, endedAt string
		var timedOut int
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &rec.Score, &rec.Questions, &rec.Difficulty, &rec.Category, &timedOut); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, err
		}
		rec.TimedOut = timedOut != 0
		games = append(games, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// ClearGames removes every game record.
func (s *SQLite) ClearGames(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM games`)
	return err
}
