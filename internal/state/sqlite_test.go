package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stanbies/cerebro-launcher/internal/logging"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := NewSQLiteStore(dbPath, logging.Nop())
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return store
}

func TestSQLiteStore_SaveAndListSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	older := &Session{
		StartedAt:     base,
		FinishedAt:    base.Add(2 * time.Hour),
		Version:       "1.2.2",
		UpdateOutcome: "none",
		Outcome:       OutcomeStopped,
		ReadyTicks:    4,
	}
	newer := &Session{
		StartedAt:     base.Add(24 * time.Hour),
		Version:       "1.2.3",
		HasNewCommits: true,
		UpdateOutcome: "declined",
		Outcome:       OutcomeCrashed,
		ExitCode:      1,
		Error:         "service container exited before becoming ready",
	}

	for _, s := range []*Session{older, newer} {
		if err := store.SaveSession(ctx, s); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}
		if s.ID == "" {
			t.Fatal("expected SaveSession to assign an ID")
		}
	}

	sessions, err := store.ListSessions(ctx, 10)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	got := sessions[0]
	if got.Version != "1.2.3" || got.Outcome != OutcomeCrashed || got.ExitCode != 1 || !got.HasNewCommits {
		t.Errorf("unexpected newest session %+v", got)
	}
	if !got.FinishedAt.IsZero() {
		t.Errorf("expected unfinished session, got %v", got.FinishedAt)
	}
	if sessions[1].Duration() != 2*time.Hour {
		t.Errorf("expected 2h duration, got %v", sessions[1].Duration())
	}
}

func TestSQLiteStore_SaveSessionUpserts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	s := &Session{ID: "fixed", StartedAt: time.Now(), Version: "1.0.0", UpdateOutcome: "none", Outcome: OutcomeInterrupted}
	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatalf("first save: %v", err)
	}

	s.Outcome = OutcomeStopped
	s.FinishedAt = s.StartedAt.Add(time.Minute)
	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatalf("second save: %v", err)
	}

	sessions, err := store.ListSessions(ctx, 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Outcome != OutcomeStopped {
		t.Errorf("expected single updated session, got %+v", sessions)
	}
}

func TestSQLiteStore_PruneSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now()
	_ = store.SaveSession(ctx, &Session{ID: "old", StartedAt: now.Add(-48 * time.Hour), Version: "1", UpdateOutcome: "none", Outcome: OutcomeStopped})
	_ = store.SaveSession(ctx, &Session{ID: "new", StartedAt: now, Version: "1", UpdateOutcome: "none", Outcome: OutcomeStopped})

	if err := store.PruneSessions(ctx, now.Add(-24*time.Hour)); err != nil {
		t.Fatalf("PruneSessions failed: %v", err)
	}

	sessions, _ := store.ListSessions(ctx, 10)
	if len(sessions) != 1 || sessions[0].ID != "new" {
		t.Errorf("expected only the recent session to remain, got %+v", sessions)
	}
}

func TestSQLiteStore_Settings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.GetSetting(ctx, SettingLastVersion); !errors.Is(err, ErrSettingNotFound) {
		t.Fatalf("expected ErrSettingNotFound, got %v", err)
	}

	if err := store.SetSetting(ctx, SettingLastVersion, "1.2.3"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := store.SetSetting(ctx, SettingLastVersion, "1.3.0"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}

	value, err := store.GetSetting(ctx, SettingLastVersion)
	if err != nil || value != "1.3.0" {
		t.Errorf("got %q, %v", value, err)
	}
}

func TestGenerateSessionID(t *testing.T) {
	a := GenerateSessionID(time.Unix(0, 1))
	b := GenerateSessionID(time.Unix(0, 2))
	if a == b || len(a) != 16 {
		t.Errorf("unexpected ids %q %q", a, b)
	}
}
