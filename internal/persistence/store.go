// Package persistence defines the storage contract for the two top-level
// tables (users and groups) and the transaction model shared by its backends.
package persistence

import (
	"context"

	"github.com/brendan-liang/softdev-sat/internal/models"
)

// Tx exposes read and write access to both tables inside a transaction.
// Records returned by getters are detached copies; a mutation only takes
// effect through PutUser/PutGroup/DeleteGroup.
type Tx interface {
	// GetUser returns the user record for username, or ErrNotFound.
	GetUser(username string) (models.User, error)
	// PutUser inserts or replaces the user record keyed by its username.
	PutUser(user models.User) error

	// GetGroup returns the group record for id, or ErrNotFound.
	GetGroup(id string) (models.Group, error)
	// PutGroup inserts or replaces the group record keyed by its id.
	PutGroup(group models.Group) error
	// DeleteGroup removes the group record; ErrNotFound when absent.
	DeleteGroup(id string) error
	// ListGroups returns every group in the table.
	ListGroups() ([]models.Group, error)
}

// Store provides serialized access to the users and groups tables.
//
// Update runs fn in a single write transaction covering both tables: either
// every mutation made through the Tx is flushed, or none is. Cross-entity
// operations (membership joins, cascading deletes) rely on this to keep the
// group member list and the user membership maps in sync. View runs fn with a
// read-only snapshot. Writers are serialized by the backend; concurrent Update
// calls never interleave.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
