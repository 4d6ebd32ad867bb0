package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brendan-liang/softdev-sat/internal/models"
	"github.com/brendan-liang/softdev-sat/internal/persistence"
)

// EventService owns per-user event collections, id assignment, and the
// mirroring of shared events into their groups.
type EventService struct {
	store  persistence.Store
	logger *slog.Logger
}

// NewEventService wires dependencies for the event service.
func NewEventService(store persistence.Store, logger *slog.Logger) *EventService {
	return &EventService{store: store, logger: defaultLogger(logger)}
}

func (s *EventService) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// Create stores a new event under username and returns its id.
//
// When the draft carries no id, the next numerical id is assigned as
// max(existing)+1 and the event id derived from it. A group-linked draft is
// mirrored into the group only when the group's event map is still empty;
// later reconciliation happens through Edit.
func (s *EventService) Create(ctx context.Context, username string, draft models.Event) (string, error) {
	if s == nil || s.store == nil {
		return "", fmt.Errorf("event service not configured")
	}

	logger := s.log(ctx, "Create", "username", username)

	if vErr := validateEvent(draft); vErr.HasErrors() {
		return "", vErr
	}

	var eventID string
	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		user, err := tx.GetUser(username)
		if err != nil {
			if isMissing(err) {
				return ErrUserNotFound
			}
			return err
		}

		event := draft
		event.Owner = username
		if event.ID == "" || event.NumericalID == 0 {
			event.NumericalID = nextNumericalID(user.Events)
			event.ID = EventID(username, event.NumericalID)
		}
		eventID = event.ID

		user.Events[event.ID] = event
		if err := tx.PutUser(user); err != nil {
			return err
		}

		if event.GroupID == "" {
			return nil
		}
		group, err := tx.GetGroup(event.GroupID)
		if err != nil {
			if isMissing(err) {
				// Dangling group link on create is tolerated.
				return nil
			}
			return err
		}
		if len(group.Events) == 0 && event.Visible {
			group.Events[event.ID] = event.Project()
			return tx.PutGroup(group)
		}
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "event creation failed", "error", err, "error_kind", ErrorKind(err))
		return "", err
	}

	logger.With("event_id", eventID).InfoContext(ctx, "event created")
	return eventID, nil
}

// Edit rewrites the mutable fields of an existing event, matched strictly by
// id, and reconciles the group mirror. The id and numerical id are preserved;
// re-applying an identical payload yields identical stored state.
func (s *EventService) Edit(ctx context.Context, username string, update models.Event) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("event service not configured")
	}

	logger := s.log(ctx, "Edit", "username", username, "event_id", update.ID)

	if vErr := validateEvent(update); vErr.HasErrors() {
		return vErr
	}

	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		user, err := tx.GetUser(username)
		if err != nil {
			if isMissing(err) {
				return ErrUserNotFound
			}
			return err
		}
		existing, ok := user.Events[update.ID]
		if !ok {
			return ErrEventNotFound
		}

		edited := update
		edited.ID = existing.ID
		edited.NumericalID = existing.NumericalID
		edited.Owner = username

		if err := moveMirror(tx, existing, edited); err != nil {
			return err
		}

		user.Events[edited.ID] = edited
		return tx.PutUser(user)
	})
	if err != nil {
		logger.ErrorContext(ctx, "event edit failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "event edited")
	return nil
}

// Delete removes an event from the user's map and, when group-linked, removes
// its mirror from that group.
func (s *EventService) Delete(ctx context.Context, username, eventID string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("event service not configured")
	}

	logger := s.log(ctx, "Delete", "username", username, "event_id", eventID)

	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		user, err := tx.GetUser(username)
		if err != nil {
			if isMissing(err) {
				return ErrUserNotFound
			}
			return err
		}
		event, ok := user.Events[eventID]
		if !ok {
			return ErrEventNotFound
		}

		delete(user.Events, eventID)
		if err := tx.PutUser(user); err != nil {
			return err
		}

		if event.GroupID == "" {
			return nil
		}
		return removeMirror(tx, event.GroupID, eventID)
	})
	if err != nil {
		logger.ErrorContext(ctx, "event delete failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "event deleted")
	return nil
}

// DeleteGroupEvent removes an event from a group's map and cascades the
// removal to every current member's personal map: once shared, the event's
// lifecycle is bound to the group copy through this path.
func (s *EventService) DeleteGroupEvent(ctx context.Context, groupID, eventID string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("event service not configured")
	}

	logger := s.log(ctx, "DeleteGroupEvent", "group_id", groupID, "event_id", eventID)

	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		group, err := tx.GetGroup(groupID)
		if err != nil {
			if isMissing(err) {
				return ErrGroupNotFound
			}
			return err
		}
		if _, ok := group.Events[eventID]; !ok {
			return ErrEventNotFound
		}

		delete(group.Events, eventID)
		if err := tx.PutGroup(group); err != nil {
			return err
		}

		for _, member := range group.Members {
			user, err := tx.GetUser(member)
			if err != nil {
				if isMissing(err) {
					logger.WarnContext(ctx, "member record missing during cascade", "username", member)
					continue
				}
				return err
			}
			if _, ok := user.Events[eventID]; !ok {
				continue
			}
			delete(user.Events, eventID)
			if err := tx.PutUser(user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "group event delete failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "group event deleted")
	return nil
}

// moveMirror is the single reconciliation point between an event and its group
// mirrors. It removes the mirror from the previous group when the link changed
// or visibility was turned off, and upserts it into the target group when the
// event is linked and visible. Both steps are no-ops when already satisfied,
// keeping edits idempotent.
func moveMirror(tx persistence.Tx, before, after models.Event) error {
	staleIn := ""
	if before.GroupID != "" && (before.GroupID != after.GroupID || !after.Visible) {
		staleIn = before.GroupID
	}
	if staleIn != "" {
		if err := removeMirror(tx, staleIn, before.ID); err != nil {
			return err
		}
	}

	if after.GroupID == "" || !after.Visible {
		return nil
	}
	group, err := tx.GetGroup(after.GroupID)
	if err != nil {
		if isMissing(err) {
			return nil
		}
		return err
	}
	group.Events[after.ID] = after.Project()
	return tx.PutGroup(group)
}

// removeMirror deletes the projection of eventID from the group when both
// still exist. Missing groups or mirrors are not errors.
func removeMirror(tx persistence.Tx, groupID, eventID string) error {
	group, err := tx.GetGroup(groupID)
	if err != nil {
		if isMissing(err) {
			return nil
		}
		return err
	}
	if _, ok := group.Events[eventID]; !ok {
		return nil
	}
	delete(group.Events, eventID)
	return tx.PutGroup(group)
}

func nextNumericalID(events map[string]models.Event) int {
	max := 0
	for _, event := range events {
		if event.NumericalID > max {
			max = event.NumericalID
		}
	}
	return max + 1
}

func validateEvent(event models.Event) *ValidationError {
	vErr := &ValidationError{}

	if !models.ValidEventType(event.Type) {
		vErr.add("type", "type must be one of SAC, Homework, Exam, Other")
	}
	if event.Date != "" {
		if _, err := time.Parse("2006-01-02", event.Date); err != nil {
			vErr.add("date", "date must be an ISO calendar date")
		}
	}
	if event.EndTime <= event.StartTime {
		vErr.add("end_time", "end time must be after start time")
	}

	return vErr
}
