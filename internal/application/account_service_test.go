package application

import (
	"context"
	"errors"
	"testing"

	"github.com/brendan-liang/softdev-sat/internal/models"
	"github.com/brendan-liang/softdev-sat/internal/persistence"
	"github.com/brendan-liang/softdev-sat/internal/persistence/jsonfile"
)

func newTestStore(t *testing.T) persistence.Store {
	t.Helper()
	store, err := jsonfile.Open(t.TempDir())
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

func seedUser(t *testing.T, store persistence.Store, user models.User) {
	t.Helper()
	if user.Groups == nil {
		user.Groups = map[string]bool{}
	}
	if user.Events == nil {
		user.Events = map[string]models.Event{}
	}
	err := store.Update(context.Background(), func(tx persistence.Tx) error {
		return tx.PutUser(user)
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", user.Username, err)
	}
}

func getUser(t *testing.T, store persistence.Store, username string) models.User {
	t.Helper()
	var user models.User
	err := store.View(context.Background(), func(tx persistence.Tx) error {
		stored, err := tx.GetUser(username)
		user = stored
		return err
	})
	if err != nil {
		t.Fatalf("get user %s: %v", username, err)
	}
	return user
}

func getGroup(t *testing.T, store persistence.Store, id string) models.Group {
	t.Helper()
	var group models.Group
	err := store.View(context.Background(), func(tx persistence.Tx) error {
		stored, err := tx.GetGroup(id)
		group = stored
		return err
	})
	if err != nil {
		t.Fatalf("get group %s: %v", id, err)
	}
	return group
}

func TestAccountService_Create(t *testing.T) {
	t.Parallel()

	t.Run("registers a new account with empty maps", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		service := NewAccountService(store, nil)

		err := service.Create(context.Background(), models.User{
			Username:     "alice",
			DisplayName:  "Alice",
			PasswordHash: "digest",
			School:       "Hogwarts",
		})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}

		stored := getUser(t, store, "alice")
		if stored.Groups == nil || stored.Events == nil {
			t.Fatalf("expected initialized maps, got groups=%v events=%v", stored.Groups, stored.Events)
		}
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		service := NewAccountService(store, nil)
		seedUser(t, store, models.User{Username: "alice", PasswordHash: "original"})

		err := service.Create(context.Background(), models.User{Username: "alice", PasswordHash: "other"})
		if !errors.Is(err, ErrUserAlreadyExists) {
			t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
		}
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected AlreadyExists kind, got %v", err)
		}
		if got := getUser(t, store, "alice").PasswordHash; got != "original" {
			t.Fatalf("existing record was overwritten: %q", got)
		}
	})

	t.Run("rejects a blank username", func(t *testing.T) {
		t.Parallel()
		service := NewAccountService(newTestStore(t), nil)

		err := service.Create(context.Background(), models.User{Username: "   "})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["username"]; !ok {
			t.Fatalf("expected username field error, got %v", vErr.FieldErrors)
		}
	})
}

func TestAccountService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("returns the full record on a matching digest", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		service := NewAccountService(store, nil)
		seedUser(t, store, models.User{
			Username:     "alice",
			PasswordHash: "digest",
			Groups:       map[string]bool{"g1": true},
		})

		user, err := service.Authenticate(context.Background(), "alice", "digest")
		if err != nil {
			t.Fatalf("Authenticate returned error: %v", err)
		}
		if user.PasswordHash != "digest" {
			t.Fatalf("expected full record including digest, got %q", user.PasswordHash)
		}
		if !user.Groups["g1"] {
			t.Fatalf("expected group map in authenticated record, got %v", user.Groups)
		}
	})

	t.Run("distinguishes missing users from bad digests", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		service := NewAccountService(store, nil)
		seedUser(t, store, models.User{Username: "alice", PasswordHash: "digest"})

		if _, err := service.Authenticate(context.Background(), "nobody", "digest"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		if _, err := service.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAccountService_Get(t *testing.T) {
	t.Parallel()

	t.Run("redacts the password digest", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		service := NewAccountService(store, nil)
		seedUser(t, store, models.User{Username: "alice", PasswordHash: "digest", School: "Hogwarts"})

		user, err := service.Get(context.Background(), "alice")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if user.PasswordHash != "" {
			t.Fatalf("expected redacted digest, got %q", user.PasswordHash)
		}
		if user.School != "Hogwarts" {
			t.Fatalf("expected profile fields intact, got school %q", user.School)
		}
	})

	t.Run("reports a missing user", func(t *testing.T) {
		t.Parallel()
		service := NewAccountService(newTestStore(t), nil)

		if _, err := service.Get(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestAccountService_Update(t *testing.T) {
	t.Parallel()

	t.Run("empty fields keep their stored values", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		service := NewAccountService(store, nil)
		seedUser(t, store, models.User{
			Username:     "alice",
			DisplayName:  "Alice",
			PasswordHash: "digest",
			School:       "Hogwarts",
		})

		err := service.Update(context.Background(), models.User{
			Username:    "alice",
			DisplayName: "Alice L",
		})
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}

		stored := getUser(t, store, "alice")
		if stored.DisplayName != "Alice L" {
			t.Fatalf("display name not updated: %q", stored.DisplayName)
		}
		if stored.PasswordHash != "digest" || stored.School != "Hogwarts" {
			t.Fatalf("omitted fields were cleared: hash=%q school=%q", stored.PasswordHash, stored.School)
		}
	})

	t.Run("reports a missing user", func(t *testing.T) {
		t.Parallel()
		service := NewAccountService(newTestStore(t), nil)

		if err := service.Update(context.Background(), models.User{Username: "nobody"}); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
