package state

import (
	"context"
	"time"
)

// SettingLastVersion holds the release tag of the last successful launch
const SettingLastVersion = "last_version"

// Store defines the interface for launch history persistence
type Store interface {
	// Initialize the store (create tables, run migrations)
	Initialize(ctx context.Context) error

	// Close the store connection
	Close() error

	SaveSession(ctx context.Context, session *Session) error
	ListSessions(ctx context.Context, limit int) ([]Session, error)
	PruneSessions(ctx context.Context, olderThan time.Time) error

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
