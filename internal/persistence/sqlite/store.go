// Package sqlite implements persistence.Store on SQLite via the pure Go
// modernc.org driver. Each table stores whole records as JSON documents keyed
// by primary id, keeping the persisted shape identical to the jsonfile
// backend while gaining real transactions.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/brendan-liang/softdev-sat/internal/models"
	"github.com/brendan-liang/softdev-sat/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	doc      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS groups (
	id  TEXT PRIMARY KEY,
	doc TEXT NOT NULL
);
`

// Store holds the database handle. Writers are additionally serialized
// in-process so concurrent updates queue instead of surfacing SQLITE_BUSY.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ persistence.Store = (*Store)(nil)

// Open opens (creating if necessary) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx persistence.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer sqlTx.Rollback()
	return fn(&tx{ctx: ctx, tx: sqlTx})
}

// Update runs fn in a write transaction, committing when fn returns nil.
func (s *Store) Update(ctx context.Context, fn func(tx persistence.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{ctx: ctx, tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type tx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *tx) GetUser(username string) (models.User, error) {
	var doc string
	err := t.tx.QueryRowContext(t.ctx, `SELECT doc FROM users WHERE username = ?`, username).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, persistence.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	var user models.User
	if err := json.Unmarshal([]byte(doc), &user); err != nil {
		return models.User{}, fmt.Errorf("decode user %q: %w", username, err)
	}
	return user, nil
}

func (t *tx) PutUser(user models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO users (username, doc) VALUES (?, ?)
		ON CONFLICT(username) DO UPDATE SET doc = excluded.doc
	`, user.Username, string(doc))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (t *tx) GetGroup(id string) (models.Group, error) {
	var doc string
	err := t.tx.QueryRowContext(t.ctx, `SELECT doc FROM groups WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, persistence.ErrNotFound
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("query group: %w", err)
	}
	var group models.Group
	if err := json.Unmarshal([]byte(doc), &group); err != nil {
		return models.Group{}, fmt.Errorf("decode group %q: %w", id, err)
	}
	return group, nil
}

func (t *tx) PutGroup(group models.Group) error {
	doc, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("encode group: %w", err)
	}
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO groups (id, doc) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc
	`, group.ID, string(doc))
	if err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}
	return nil
}

func (t *tx) DeleteGroup(id string) error {
	result, err := t.tx.ExecContext(t.ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (t *tx) ListGroups() ([]models.Group, error) {
	rows, err := t.tx.QueryContext(t.ctx, `SELECT doc FROM groups`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		var group models.Group
		if err := json.Unmarshal([]byte(doc), &group); err != nil {
			return nil, fmt.Errorf("decode group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}
