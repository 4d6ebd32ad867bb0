// Package jsonfile implements persistence.Store over two JSON table files.
//
// The whole of each table lives in memory and is flushed wholesale after every
// committed update: the table is marshalled to a temporary file in the same
// directory and atomically renamed over the previous one, so a crash mid-write
// can never leave a half-written table behind.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/brendan-liang/softdev-sat/internal/models"
	"github.com/brendan-liang/softdev-sat/internal/persistence"
)

const (
	usersFile  = "users.json"
	groupsFile = "groups.json"
)

// Store keeps both tables in memory behind a single writer lock.
type Store struct {
	dir string

	mu     sync.RWMutex
	users  map[string]models.User
	groups map[string]models.Group
}

var _ persistence.Store = (*Store)(nil)

// Open loads the tables from dir, creating the directory and empty tables on
// first use. A missing or corrupt table file starts empty and is rewritten on
// the next flush, matching how the server has always recovered.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store := &Store{dir: dir}

	if err := loadTable(filepath.Join(dir, usersFile), &store.users); err != nil {
		return nil, fmt.Errorf("load users table: %w", err)
	}
	if err := loadTable(filepath.Join(dir, groupsFile), &store.groups); err != nil {
		return nil, fmt.Errorf("load groups table: %w", err)
	}
	if store.users == nil {
		store.users = make(map[string]models.User)
	}
	if store.groups == nil {
		store.groups = make(map[string]models.Group)
	}
	return store, nil
}

func loadTable[T any](path string, out *map[string]T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		// Corrupt table: start fresh rather than refusing to boot.
		*out = nil
		return nil
	}
	return nil
}

// View runs fn against a read snapshot of both tables.
func (s *Store) View(ctx context.Context, fn func(tx persistence.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{store: s, readOnly: true})
}

// Update runs fn under the writer lock. When fn returns nil, staged changes
// are applied to the in-memory tables and both files are flushed; any error
// discards the staged changes entirely.
func (s *Store) Update(ctx context.Context, fn func(tx persistence.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{
		store:         s,
		stagedUsers:   make(map[string]models.User),
		stagedGroups:  make(map[string]models.Group),
		deletedGroups: make(map[string]bool),
	}
	if err := fn(t); err != nil {
		return err
	}

	for username, user := range t.stagedUsers {
		s.users[username] = user
	}
	for id, group := range t.stagedGroups {
		s.groups[id] = group
	}
	for id := range t.deletedGroups {
		delete(s.groups, id)
	}

	if err := s.flushLocked(); err != nil {
		return fmt.Errorf("flush tables: %w", err)
	}
	return nil
}

// Close flushes both tables a final time.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if err := writeTable(filepath.Join(s.dir, usersFile), s.users); err != nil {
		return err
	}
	return writeTable(filepath.Join(s.dir, groupsFile), s.groups)
}

func writeTable(path string, table any) error {
	data, err := json.MarshalIndent(table, "", "    ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// tx stages mutations against the store's tables. Reads consult the staged
// layer first so a transaction observes its own writes.
type tx struct {
	store    *Store
	readOnly bool

	stagedUsers   map[string]models.User
	stagedGroups  map[string]models.Group
	deletedGroups map[string]bool
}

func (t *tx) GetUser(username string) (models.User, error) {
	if user, ok := t.stagedUsers[username]; ok {
		return user.Clone(), nil
	}
	user, ok := t.store.users[username]
	if !ok {
		return models.User{}, persistence.ErrNotFound
	}
	return user.Clone(), nil
}

func (t *tx) PutUser(user models.User) error {
	if t.readOnly {
		return errReadOnly
	}
	t.stagedUsers[user.Username] = user.Clone()
	return nil
}

func (t *tx) GetGroup(id string) (models.Group, error) {
	if t.deletedGroups[id] {
		return models.Group{}, persistence.ErrNotFound
	}
	if group, ok := t.stagedGroups[id]; ok {
		return group.Clone(), nil
	}
	group, ok := t.store.groups[id]
	if !ok {
		return models.Group{}, persistence.ErrNotFound
	}
	return group.Clone(), nil
}

func (t *tx) PutGroup(group models.Group) error {
	if t.readOnly {
		return errReadOnly
	}
	delete(t.deletedGroups, group.ID)
	t.stagedGroups[group.ID] = group.Clone()
	return nil
}

func (t *tx) DeleteGroup(id string) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, err := t.GetGroup(id); err != nil {
		return err
	}
	delete(t.stagedGroups, id)
	t.deletedGroups[id] = true
	return nil
}

func (t *tx) ListGroups() ([]models.Group, error) {
	groups := make([]models.Group, 0, len(t.store.groups)+len(t.stagedGroups))
	for id, group := range t.store.groups {
		if t.deletedGroups[id] {
			continue
		}
		if _, staged := t.stagedGroups[id]; staged {
			continue
		}
		groups = append(groups, group.Clone())
	}
	for _, group := range t.stagedGroups {
		groups = append(groups, group.Clone())
	}
	return groups, nil
}

var errReadOnly = errors.New("jsonfile: write inside read-only transaction")
