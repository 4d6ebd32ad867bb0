package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/brendan-liang/softdev-sat/internal/application"
	"github.com/brendan-liang/softdev-sat/internal/models"
)

type accountService interface {
	Create(ctx context.Context, user models.User) error
	Authenticate(ctx context.Context, username, passwordHash string) (models.User, error)
	Get(ctx context.Context, username string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

type eventService interface {
	Create(ctx context.Context, username string, draft models.Event) (string, error)
	Edit(ctx context.Context, username string, update models.Event) error
	Delete(ctx context.Context, username, eventID string) error
	DeleteGroupEvent(ctx context.Context, groupID, eventID string) error
}

// UserHandler serves account endpoints and the per-user event endpoints
// nested under /users/{username}/events.
type UserHandler struct {
	accounts  accountService
	events    eventService
	responder responder
	logger    *slog.Logger
}

// NewUserHandler wires the account and event services into a handler.
func NewUserHandler(accounts accountService, events eventService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{accounts: accounts, events: events, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

// Get serves a profile lookup; the password digest is always redacted.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username, _ := UsernameFromContext(r.Context())

	user, err := h.accounts.Get(r.Context(), username)
	if err != nil {
		h.log(r.Context(), "Get", "username", username).ErrorContext(r.Context(), "profile fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, user)
}

// SignIn compares the submitted digest against the stored one and returns the
// complete record on success.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeBadRequest(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "SignIn", "username", req.Username)

	user, err := h.accounts.Authenticate(r.Context(), req.Username, req.PasswordHash)
	if err != nil {
		logger.ErrorContext(r.Context(), "sign-in failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user signed in")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, user)
}

// SignUp registers a new account.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeBadRequest(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "SignUp", "username", req.Username)

	if err := h.accounts.Create(r.Context(), req); err != nil {
		logger.ErrorContext(r.Context(), "sign-up failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user signed up")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

// Update merges submitted account fields into the stored record.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeBadRequest(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Update", "username", req.Username)

	if err := h.accounts.Update(r.Context(), req); err != nil {
		logger.ErrorContext(r.Context(), "account update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

// CreateEvent stores a new event for the user in the path.
func (h *UserHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	username, _ := UsernameFromContext(r.Context())

	var req models.Event
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeBadRequest(r.Context(), w, err)
		return
	}
	applyEventDefaults(&req)

	logger := h.log(r.Context(), "CreateEvent", "username", username)

	eventID, err := h.events.Create(r.Context(), username, req)
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", eventID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true, EventID: eventID})
}

// EditEvent rewrites an existing event, matched by id.
func (h *UserHandler) EditEvent(w http.ResponseWriter, r *http.Request) {
	username, _ := UsernameFromContext(r.Context())

	var req models.Event
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeBadRequest(r.Context(), w, err)
		return
	}
	applyEventDefaults(&req)

	logger := h.log(r.Context(), "EditEvent", "username", username, "event_id", req.ID)

	if err := h.events.Edit(r.Context(), username, req); err != nil {
		logger.ErrorContext(r.Context(), "event edit failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event edited")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true, Message: "Event updated successfully"})
}

// DeleteEvent removes one of the user's events.
func (h *UserHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	username, _ := UsernameFromContext(r.Context())
	eventID, _ := EventIDFromContext(r.Context())

	logger := h.log(r.Context(), "DeleteEvent", "username", username, "event_id", eventID)

	if err := h.events.Delete(r.Context(), username, eventID); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true, Message: "Event deleted successfully"})
}

// applyEventDefaults fills the defaults the desktop client relies on when it
// omits fields from an event payload.
func applyEventDefaults(event *models.Event) {
	if event.Type == "" {
		event.Type = models.EventTypeSAC
	}
	if event.Colour == "" {
		event.Colour = "#7B68EE"
	}
	if event.Date == "" {
		event.Date = time.Now().Format("2006-01-02")
	}
	if event.StartTime == 0 && event.EndTime == 0 {
		event.EndTime = 1
	}
}
