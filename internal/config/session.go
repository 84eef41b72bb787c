package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"probel/internal/model"
)

const sessionFileName = "session.json"

func SessionPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionFileName), nil
}

// LoadSession returns the stored session, or nil when signed out. A corrupt
// file is treated as signed out.
func LoadSession() (*model.Session, error) {
	path, err := SessionPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil || s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

func SaveSession(s model.Session) error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return writePrivate(path, b)
}

func ClearSession() error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
