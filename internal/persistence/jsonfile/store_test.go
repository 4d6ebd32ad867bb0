package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brendan-liang/softdev-sat/internal/models"
	"github.com/brendan-liang/softdev-sat/internal/persistence"
)

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()
	store := openStore(t, t.TempDir())
	ctx := context.Background()

	err := store.Update(ctx, func(tx persistence.Tx) error {
		if err := tx.PutUser(models.User{Username: "alice", School: "Hogwarts"}); err != nil {
			return err
		}
		return tx.PutGroup(models.Group{ID: "g1", Name: "Math", Members: []string{"alice"}})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	err = store.View(ctx, func(tx persistence.Tx) error {
		user, err := tx.GetUser("alice")
		if err != nil {
			return err
		}
		if user.School != "Hogwarts" {
			t.Errorf("unexpected school %q", user.School)
		}
		group, err := tx.GetGroup("g1")
		if err != nil {
			return err
		}
		if len(group.Members) != 1 || group.Members[0] != "alice" {
			t.Errorf("unexpected members %v", group.Members)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	first, err := Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	err = first.Update(ctx, func(tx persistence.Tx) error {
		return tx.PutUser(models.User{Username: "alice"})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := openStore(t, dir)
	err = second.View(ctx, func(tx persistence.Tx) error {
		_, err := tx.GetUser("alice")
		return err
	})
	if err != nil {
		t.Fatalf("record lost across reopen: %v", err)
	}
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	t.Parallel()
	store := openStore(t, t.TempDir())
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Update(ctx, func(tx persistence.Tx) error {
		if err := tx.PutUser(models.User{Username: "alice"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error to surface, got %v", err)
	}

	err = store.View(ctx, func(tx persistence.Tx) error {
		_, err := tx.GetUser("alice")
		return err
	})
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("staged write survived a failed update: %v", err)
	}
}

func TestStore_TransactionSeesOwnWrites(t *testing.T) {
	t.Parallel()
	store := openStore(t, t.TempDir())
	ctx := context.Background()

	err := store.Update(ctx, func(tx persistence.Tx) error {
		if err := tx.PutUser(models.User{Username: "alice", School: "Hogwarts"}); err != nil {
			return err
		}
		user, err := tx.GetUser("alice")
		if err != nil {
			return err
		}
		if user.School != "Hogwarts" {
			t.Errorf("staged write not visible, got %q", user.School)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestStore_DeleteGroup(t *testing.T) {
	t.Parallel()
	store := openStore(t, t.TempDir())
	ctx := context.Background()

	err := store.Update(ctx, func(tx persistence.Tx) error {
		return tx.PutGroup(models.Group{ID: "g1", Name: "Math"})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	err = store.Update(ctx, func(tx persistence.Tx) error {
		if err := tx.DeleteGroup("g1"); err != nil {
			return err
		}
		if _, err := tx.GetGroup("g1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Errorf("deleted group still readable in transaction: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	err = store.Update(ctx, func(tx persistence.Tx) error {
		return tx.DeleteGroup("g1")
	})
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestStore_ListGroups(t *testing.T) {
	t.Parallel()
	store := openStore(t, t.TempDir())
	ctx := context.Background()

	err := store.Update(ctx, func(tx persistence.Tx) error {
		if err := tx.PutGroup(models.Group{ID: "g1", Name: "Math"}); err != nil {
			return err
		}
		return tx.PutGroup(models.Group{ID: "g2", Name: "Physics"})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	err = store.View(ctx, func(tx persistence.Tx) error {
		groups, err := tx.ListGroups()
		if err != nil {
			return err
		}
		if len(groups) != 2 {
			t.Errorf("expected 2 groups, got %d", len(groups))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestStore_WriteInsideViewFails(t *testing.T) {
	t.Parallel()
	store := openStore(t, t.TempDir())

	err := store.View(context.Background(), func(tx persistence.Tx) error {
		return tx.PutUser(models.User{Username: "alice"})
	})
	if err == nil {
		t.Fatalf("expected write inside View to fail")
	}
}

func TestOpen_StartsFreshOnCorruptTable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt table: %v", err)
	}

	store := openStore(t, dir)
	err := store.View(context.Background(), func(tx persistence.Tx) error {
		_, err := tx.GetUser("alice")
		return err
	})
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected empty table, got %v", err)
	}
}
