package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brendan-liang/softdev-sat/internal/models"
)

// Session is the locally persisted sign-in state: whether a user is signed in,
// the last pulled account snapshot, and the password digest used to
// re-authenticate on every pull.
type Session struct {
	LoggedIn     bool         `json:"logged_in"`
	Username     string       `json:"logged_in_user"`
	PasswordHash string       `json:"password_hash"`
	User         *models.User `json:"user,omitempty"`
}

// LoadSession reads the session file. A missing file yields a signed-out
// session rather than an error.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client: read session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("client: parse session %s: %w", path, err)
	}
	return &session, nil
}

// Save writes the session atomically next to its final location.
func (s *Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("client: create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("client: encode session: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return fmt.Errorf("client: write session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("client: write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("client: write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("client: write session: %w", err)
	}
	return nil
}
