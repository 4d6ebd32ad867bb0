package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brendan-liang/softdev-sat/internal/application"
)

var errBadRequestBody = errors.New("invalid request body")

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeBadRequest(ctx context.Context, w http.ResponseWriter, err error) {
	r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", http.StatusBadRequest, "error", err)
	r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: errBadRequestBody.Error()})
}

// handleServiceError translates service failures into the wire contract:
// domain errors become 200 + {"error": message} for the legacy client,
// validation failures 422, everything else 500.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	if message, ok := domainErrorMessage(err); ok {
		r.writeJSON(ctx, w, http.StatusOK, errorResponse{Error: message})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "Invalid input",
			Fields: vErr.FieldErrors,
		})
		return
	}

	r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
	r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func domainErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		return "User not found", true
	case errors.Is(err, application.ErrGroupNotFound):
		return "Group not found", true
	case errors.Is(err, application.ErrEventNotFound):
		return "Event not found", true
	case errors.Is(err, application.ErrInvalidCredentials):
		return "Incorrect password", true
	case errors.Is(err, application.ErrUserAlreadyExists):
		return "User already exists", true
	case errors.Is(err, application.ErrGroupAlreadyExists):
		return "Group already exists", true
	}
	return "", false
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	EventID string `json:"event_id,omitempty"`
	GroupID string `json:"group_id,omitempty"`
}
