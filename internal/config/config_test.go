package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"probel/internal/model"
)

func TestLoad_MissingFileIsEmptyConfig(t *testing.T) {
	t.Setenv("PROBEL_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(&GlobalConfig{}, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_RoundTripAndConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROBEL_CONFIG_DIR", dir)

	want := &GlobalConfig{
		BackendURL: "http://localhost:9999",
		AnonKey:    "anon",
		Shell:      "workspaces",
		TUI:        &TUIConfig{MarkdownStyle: "light"},
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := Save(want); err != nil {
				t.Errorf("concurrent Save: %v", err)
			}
		}()
	}
	wg.Wait()

	b, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var parsed GlobalConfig
	if err := json.Unmarshal(b, &parsed); err != nil {
		t.Fatalf("config corrupted after concurrent writes: %v\n%s", err, string(b))
	}
}

func TestSession_SaveLoadClear(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROBEL_CONFIG_DIR", dir)

	if s, err := LoadSession(); err != nil || s != nil {
		t.Fatalf("LoadSession before sign in: got %+v, %v", s, err)
	}

	want := model.Session{
		AccessToken: "tok",
		TokenType:   "bearer",
		ExpiresAt:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		User:        model.User{ID: "u1", Email: "a@example.com", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	if err := SaveSession(want); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	st, err := os.Stat(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatalf("stat session: %v", err)
	}
	if perm := st.Mode().Perm(); perm != 0o600 {
		t.Fatalf("session perm: got %o want 600", perm)
	}
	got, err := LoadSession()
	if err != nil || got == nil {
		t.Fatalf("LoadSession: %+v, %v", got, err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}

	if err := ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if err := ClearSession(); err != nil {
		t.Fatalf("ClearSession twice: %v", err)
	}
	if s, _ := LoadSession(); s != nil {
		t.Fatalf("session still present after clear")
	}
}

func TestFirst(t *testing.T) {
	t.Parallel()

	if got := First("", "  ", "b", "c"); got != "b" {
		t.Fatalf("First: got %q want b", got)
	}
	if got := First(); got != "" {
		t.Fatalf("First(): got %q", got)
	}
}
