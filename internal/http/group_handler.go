package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brendan-liang/softdev-sat/internal/application"
	"github.com/brendan-liang/softdev-sat/internal/models"
)

type groupService interface {
	Create(ctx context.Context, group models.Group) (string, error)
	Get(ctx context.Context, groupID string) (models.Group, error)
	List(ctx context.Context) (map[string]models.Group, error)
	Join(ctx context.Context, groupID, username string) error
	Leave(ctx context.Context, groupID, username string) error
	Delete(ctx context.Context, groupID string) error
}

// GroupHandler serves the group endpoints, including the group-side event
// delete that cascades to member calendars.
type GroupHandler struct {
	groups    groupService
	events    eventService
	responder responder
	logger    *slog.Logger
}

// NewGroupHandler wires the group and event services into a handler.
func NewGroupHandler(groups groupService, events eventService, logger *slog.Logger) *GroupHandler {
	base := defaultLogger(logger)
	return &GroupHandler{groups: groups, events: events, responder: newResponder(base), logger: base}
}

func (h *GroupHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "GroupHandler", operation, attrs...)
}

// Create registers a new group and reports its derived id.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.Group
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeBadRequest(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Create", "name", req.Name, "school", req.School)

	groupID, err := h.groups.Create(r.Context(), req)
	if err != nil {
		logger.ErrorContext(r.Context(), "group creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("group_id", groupID).InfoContext(r.Context(), "group created")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true, GroupID: groupID})
}

// Get serves a single group by id.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, _ := GroupIDFromContext(r.Context())

	group, err := h.groups.Get(r.Context(), groupID)
	if err != nil {
		h.log(r.Context(), "Get", "group_id", groupID).ErrorContext(r.Context(), "group fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, group)
}

// List serves the full group table keyed by id.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	table, err := h.groups.List(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "group list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, table)
}

// Join adds the posted user to the group in the path.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	groupID, _ := GroupIDFromContext(r.Context())

	var req models.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeBadRequest(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Join", "group_id", groupID, "username", req.Username)

	if err := h.groups.Join(r.Context(), groupID, req.Username); err != nil {
		logger.ErrorContext(r.Context(), "group join failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user joined group")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true, Message: "User joined the group successfully"})
}

// Leave removes the posted user from the group in the path.
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	groupID, _ := GroupIDFromContext(r.Context())

	var req models.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeBadRequest(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Leave", "group_id", groupID, "username", req.Username)

	if err := h.groups.Leave(r.Context(), groupID, req.Username); err != nil {
		logger.ErrorContext(r.Context(), "group leave failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user left group")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true, Message: "User left the group successfully"})
}

// Delete removes the group and cascades membership and event cleanup.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	groupID, _ := GroupIDFromContext(r.Context())

	logger := h.log(r.Context(), "Delete", "group_id", groupID)

	if err := h.groups.Delete(r.Context(), groupID); err != nil {
		logger.ErrorContext(r.Context(), "group delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "group deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true, Message: "Group deleted successfully"})
}

// DeleteEvent removes a shared event from the group and from every member's
// personal calendar.
func (h *GroupHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	groupID, _ := GroupIDFromContext(r.Context())
	eventID, _ := EventIDFromContext(r.Context())

	logger := h.log(r.Context(), "DeleteEvent", "group_id", groupID, "event_id", eventID)

	if err := h.events.DeleteGroupEvent(r.Context(), groupID, eventID); err != nil {
		logger.ErrorContext(r.Context(), "group event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "group event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true, Message: "Event deleted successfully"})
}
