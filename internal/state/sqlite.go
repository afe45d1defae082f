package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stanbies/cerebro-launcher/internal/logging"
)

// ErrSettingNotFound is returned by GetSetting for unknown keys
var ErrSettingNotFound = errors.New("setting not found")

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *logging.Logger
	path   string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store, creating the parent directory
func NewSQLiteStore(path string, logger *logging.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.WithComponent("sqlite-store"),
		path:   path,
	}, nil
}

// Initialize creates tables and runs migrations
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	s.logger.Debug().Str("path", s.path).Msg("Initializing SQLite database")

	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			version TEXT NOT NULL,
			has_new_commits BOOLEAN NOT NULL DEFAULT 0,
			update_outcome TEXT NOT NULL,
			outcome TEXT NOT NULL,
			exit_code INTEGER NOT NULL,
			ready_ticks INTEGER NOT NULL DEFAULT 0,
			error TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSession inserts or replaces a session record
func (s *SQLiteStore) SaveSession(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = GenerateSessionID(session.StartedAt)
	}

	query := `
		INSERT INTO sessions (id, started_at, finished_at, version, has_new_commits,
			update_outcome, outcome, exit_code, ready_ticks, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			version = excluded.version,
			has_new_commits = excluded.has_new_commits,
			update_outcome = excluded.update_outcome,
			outcome = excluded.outcome,
			exit_code = excluded.exit_code,
			ready_ticks = excluded.ready_ticks,
			error = excluded.error
	`

	var finishedAt sql.NullTime
	if !session.FinishedAt.IsZero() {
		finishedAt = sql.NullTime{Time: session.FinishedAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.StartedAt,
		finishedAt,
		session.Version,
		session.HasNewCommits,
		session.UpdateOutcome,
		string(session.Outcome),
		session.ExitCode,
		session.ReadyTicks,
		session.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// ListSessions returns the most recent sessions first
func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, started_at, finished_at, version, has_new_commits,
			   update_outcome, outcome, exit_code, ready_ticks, error
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []Session
	for rows.Next() {
		var session Session
		var finishedAt sql.NullTime
		var outcome string
		var errorStr sql.NullString

		if err := rows.Scan(
			&session.ID,
			&session.StartedAt,
			&finishedAt,
			&session.Version,
			&session.HasNewCommits,
			&session.UpdateOutcome,
			&outcome,
			&session.ExitCode,
			&session.ReadyTicks,
			&errorStr,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if finishedAt.Valid {
			session.FinishedAt = finishedAt.Time
		}
		session.Outcome = Outcome(outcome)
		session.Error = errorStr.String

		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// PruneSessions deletes sessions started before olderThan
func (s *SQLiteStore) PruneSessions(ctx context.Context, olderThan time.Time) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE started_at < ?`, olderThan)
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}

	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		s.logger.Debug().Int64("deleted", deleted).Msg("Pruned old sessions")
	}
	return nil
}

// GetSetting retrieves a setting value
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM settings WHERE key = ?`
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// SetSetting stores a setting value
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}
