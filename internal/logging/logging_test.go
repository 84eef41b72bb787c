package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "probel.log")
	l, err := New(Options{Path: path, Verbose: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("panel opened")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(b))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["msg"] != "panel opened" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNew_DefaultLevelDropsDebug(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "probel.log")
	l, err := New(Options{Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hidden")
	_ = l.Sync()
	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "hidden") {
		t.Fatalf("debug entry written at info level: %s", b)
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	if OrNop(nil) == nil {
		t.Fatalf("OrNop(nil) returned nil")
	}
}
