package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultBackendURL = "http://127.0.0.1:8787"
	DefaultAddr       = "127.0.0.1:8787"
)

// GlobalConfig is the user's ~/.probel/config.json. Environment variables and
// command-line flags take precedence over these values.
type GlobalConfig struct {
	BackendURL string `json:"backendUrl,omitempty"`
	AnonKey    string `json:"anonKey,omitempty"`

	// AIDirect makes the client call the AI provider itself instead of the
	// backend proxy. It requires a client-held API key.
	AIDirect bool `json:"aiDirect,omitempty"`

	// Shell is the default TUI layout: "panels" or "workspaces".
	Shell string `json:"shell,omitempty"`

	TUI *TUIConfig `json:"tui,omitempty"`

	Server *ServerConfig `json:"server,omitempty"`
}

type TUIConfig struct {
	// MarkdownStyle is a glamour style name ("dark", "light", "notty", "auto").
	MarkdownStyle string `json:"markdownStyle,omitempty"`
}

type ServerConfig struct {
	Addr   string `json:"addr,omitempty"`
	DBPath string `json:"dbPath,omitempty"`
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.probel).
	if v := strings.TrimSpace(os.Getenv("PROBEL_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".probel"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func Load() (*GlobalConfig, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(cfg *GlobalConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return writePrivate(path, b)
}

// writePrivate replaces path with b through a sibling temp file so readers
// never observe a partial write. The file is created 0600.
func writePrivate(path string, b []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return err
	}
	if _, err := f.Write(b); err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// DefaultDBPath is where `probel serve` keeps its database.
func DefaultDBPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "probel.sqlite"), nil
}

// DefaultLogPath is where the TUI writes its log, since stdout is the terminal.
func DefaultLogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "probel.log"), nil
}

// First returns the first non-empty value.
func First(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
