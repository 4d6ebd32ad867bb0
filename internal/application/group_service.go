package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brendan-liang/softdev-sat/internal/models"
	"github.com/brendan-liang/softdev-sat/internal/persistence"
)

// GroupService owns group creation, membership, ownership transfer, and the
// cascading effects membership changes have on event visibility.
type GroupService struct {
	store  persistence.Store
	logger *slog.Logger
}

// NewGroupService wires dependencies for the group service.
func NewGroupService(store persistence.Store, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, logger: defaultLogger(logger)}
}

func (s *GroupService) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GroupService", operation, attrs...)
}

// Create registers a new group keyed by the digest of its name and school and
// records the membership on every listed user. Listed users without a record
// are logged and skipped.
func (s *GroupService) Create(ctx context.Context, group models.Group) (string, error) {
	if s == nil || s.store == nil {
		return "", fmt.Errorf("group service not configured")
	}

	logger := s.log(ctx, "Create", "name", group.Name, "school", group.School)

	vErr := &ValidationError{}
	if strings.TrimSpace(group.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(group.School) == "" {
		vErr.add("school", "school is required")
	}
	if vErr.HasErrors() {
		return "", vErr
	}

	groupID := GroupID(group.Name, group.School)
	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		if _, err := tx.GetGroup(groupID); err == nil {
			return ErrGroupAlreadyExists
		}

		record := group.Clone()
		record.ID = groupID
		if record.Events == nil {
			record.Events = make(map[string]models.GroupEvent)
		}
		if err := tx.PutGroup(record); err != nil {
			return err
		}

		for _, member := range record.Members {
			user, err := tx.GetUser(member)
			if err != nil {
				if isMissing(err) {
					logger.WarnContext(ctx, "listed member has no account", "username", member)
					continue
				}
				return err
			}
			user.Groups[groupID] = true
			if err := tx.PutUser(user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "group creation failed", "error", err, "error_kind", ErrorKind(err))
		return "", err
	}

	logger.With("group_id", groupID).InfoContext(ctx, "group created")
	return groupID, nil
}

// Get returns a single group by id.
func (s *GroupService) Get(ctx context.Context, groupID string) (models.Group, error) {
	if s == nil || s.store == nil {
		return models.Group{}, fmt.Errorf("group service not configured")
	}

	var group models.Group
	err := s.store.View(ctx, func(tx persistence.Tx) error {
		stored, err := tx.GetGroup(groupID)
		if err != nil {
			if isMissing(err) {
				return ErrGroupNotFound
			}
			return err
		}
		group = stored
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}
	return group, nil
}

// List returns the full group table keyed by group id. Filtering is a client
// concern; there is no pagination.
func (s *GroupService) List(ctx context.Context) (map[string]models.Group, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("group service not configured")
	}

	table := make(map[string]models.Group)
	err := s.store.View(ctx, func(tx persistence.Tx) error {
		groups, err := tx.ListGroups()
		if err != nil {
			return err
		}
		for _, group := range groups {
			table[group.ID] = group
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// Join adds username to the group. Joining a group you already belong to is a
// successful no-op. The first member to ever join becomes the owner.
func (s *GroupService) Join(ctx context.Context, groupID, username string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("group service not configured")
	}

	logger := s.log(ctx, "Join", "group_id", groupID, "username", username)

	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		group, err := tx.GetGroup(groupID)
		if err != nil {
			if isMissing(err) {
				return ErrGroupNotFound
			}
			return err
		}

		if user, err := tx.GetUser(username); err == nil {
			if !user.Groups[groupID] {
				user.Groups[groupID] = true
				if err := tx.PutUser(user); err != nil {
					return err
				}
			}
		} else if !isMissing(err) {
			return err
		}

		if !group.HasMember(username) {
			group.Members = append(group.Members, username)
		}
		if len(group.Members) == 1 {
			group.Owner = username
		}
		return tx.PutGroup(group)
	})
	if err != nil {
		logger.ErrorContext(ctx, "group join failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "user joined group")
	return nil
}

// Leave removes username from the group and the group from the user's
// membership map. A departing owner hands ownership to the first remaining
// member, or to nobody when the group empties.
func (s *GroupService) Leave(ctx context.Context, groupID, username string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("group service not configured")
	}

	logger := s.log(ctx, "Leave", "group_id", groupID, "username", username)

	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		group, err := tx.GetGroup(groupID)
		if err != nil {
			if isMissing(err) {
				return ErrGroupNotFound
			}
			return err
		}

		members := group.Members[:0:0]
		for _, member := range group.Members {
			if member != username {
				members = append(members, member)
			}
		}
		group.Members = members

		if user, err := tx.GetUser(username); err == nil {
			if user.Groups[groupID] {
				delete(user.Groups, groupID)
				if err := tx.PutUser(user); err != nil {
					return err
				}
			}
		} else if !isMissing(err) {
			return err
		}

		if group.Owner == username {
			if len(group.Members) > 0 {
				group.Owner = group.Members[0]
			} else {
				group.Owner = ""
			}
		}
		return tx.PutGroup(group)
	})
	if err != nil {
		logger.ErrorContext(ctx, "group leave failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "user left group")
	return nil
}

// Delete removes the group and cascades to every current member: the group id
// leaves their membership maps, events mirrored in the group leave their
// personal maps, and unmirrored events still pointing at the group lose the
// dangling link. Missing member records are logged, not fatal.
func (s *GroupService) Delete(ctx context.Context, groupID string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("group service not configured")
	}

	logger := s.log(ctx, "Delete", "group_id", groupID)

	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		group, err := tx.GetGroup(groupID)
		if err != nil {
			if isMissing(err) {
				return ErrGroupNotFound
			}
			return err
		}

		for _, member := range group.Members {
			user, err := tx.GetUser(member)
			if err != nil {
				if isMissing(err) {
					logger.WarnContext(ctx, "member record missing during delete", "username", member)
					continue
				}
				return err
			}

			delete(user.Groups, groupID)
			for id := range group.Events {
				delete(user.Events, id)
			}
			for id, event := range user.Events {
				if event.GroupID == groupID {
					event.GroupID = ""
					user.Events[id] = event
				}
			}
			if err := tx.PutUser(user); err != nil {
				return err
			}
		}

		return tx.DeleteGroup(groupID)
	})
	if err != nil {
		logger.ErrorContext(ctx, "group delete failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "group deleted")
	return nil
}
