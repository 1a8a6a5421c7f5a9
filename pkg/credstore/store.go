// Package credstore persists the optional GitHub auth token in a small
// SQLite key/value store. The github client reads the token through
// the CredentialStore interface and clears it when the provider
// rejects it.
package credstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/hubscout/pkg/log"
)

// TokenKey is the credential key the GitHub auth token is stored under.
const TokenKey = "github_token"

type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open opens (creating if needed) the credential store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS credentials (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating credentials table: %w", err)
	}

	return &Store{
		db:     db,
		logger: log.ForService("credstore"),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key, or an empty string when absent.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading credential %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO credentials (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing credential %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM credentials WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting credential %s: %w", key, err)
	}
	return nil
}

// Token implements github.CredentialStore.
func (s *Store) Token() (string, error) {
	return s.Get(TokenKey)
}

// SetToken stores the GitHub auth token.
func (s *Store) SetToken(token string) error {
	return s.Set(TokenKey, token)
}

// ClearToken implements github.CredentialStore. Called by the client
// when the provider reports an authentication failure.
func (s *Store) ClearToken() error {
	s.logger.Warnf("clearing stored GitHub token")
	return s.Delete(TokenKey)
}
