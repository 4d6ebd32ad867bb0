package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// ReferenceHandler serves the static reference collections (subjects and
// schools) clients use to populate pickers. The lists live as JSON files in
// the data directory; a missing or corrupt file yields an empty list rather
// than an error.
type ReferenceHandler struct {
	dataDir   string
	responder responder
	logger    *slog.Logger
}

// NewReferenceHandler serves reference lists from dataDir.
func NewReferenceHandler(dataDir string, logger *slog.Logger) *ReferenceHandler {
	base := defaultLogger(logger)
	return &ReferenceHandler{dataDir: dataDir, responder: newResponder(base), logger: base}
}

// Subjects serves the subject reference list.
func (h *ReferenceHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]string{
		"subjects": h.loadList(r, "subjects.json"),
	})
}

// Schools serves the school reference list.
func (h *ReferenceHandler) Schools(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]string{
		"schools": h.loadList(r, "schools.json"),
	})
}

func (h *ReferenceHandler) loadList(r *http.Request, filename string) []string {
	path := filepath.Join(h.dataDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		handlerLogger(r.Context(), h.logger, "ReferenceHandler", "loadList").
			WarnContext(r.Context(), "reference list unreadable", "file", filename, "error", err)
		return []string{}
	}
	return list
}
