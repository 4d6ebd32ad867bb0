package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/brendan-liang/softdev-sat/internal/application"
	"github.com/brendan-liang/softdev-sat/internal/models"
	"github.com/brendan-liang/softdev-sat/internal/persistence/jsonfile"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dataDir := t.TempDir()

	store, err := jsonfile.Open(dataDir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	subjects, _ := json.Marshal([]string{"Methods", "Physics"})
	if err := os.WriteFile(filepath.Join(dataDir, "subjects.json"), subjects, 0o644); err != nil {
		t.Fatalf("write subjects: %v", err)
	}

	accounts := application.NewAccountService(store, nil)
	events := application.NewEventService(store, nil)
	groups := application.NewGroupService(store, nil)

	router := NewRouter(RouterConfig{
		Users:     NewUserHandler(accounts, events, nil),
		Groups:    NewGroupHandler(groups, events, nil),
		Reference: NewReferenceHandler(dataDir, nil),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any) (int, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return decodeResponse(t, resp)
}

func getJSON(t *testing.T, server *httptest.Server, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return decodeResponse(t, resp)
}

func decodeResponse(t *testing.T, resp *http.Response) (int, map[string]any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var body map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("decode response %q: %v", data, err)
		}
	}
	return resp.StatusCode, body
}

func signUp(t *testing.T, server *httptest.Server, username string) {
	t.Helper()
	status, body := postJSON(t, server, "/users/signup", models.User{
		Username:     username,
		DisplayName:  "Test User",
		PasswordHash: "digest-" + username,
		School:       "Hogwarts",
	})
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("signup %s: status=%d body=%v", username, status, body)
	}
}

func TestAccountEndpoints(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	signUp(t, server, "alice")

	t.Run("duplicate signup reports the conflict", func(t *testing.T) {
		status, body := postJSON(t, server, "/users/signup", models.User{Username: "alice", PasswordHash: "x"})
		if status != http.StatusOK || body["error"] != "User already exists" {
			t.Fatalf("status=%d body=%v", status, body)
		}
	})

	t.Run("signin returns the full record", func(t *testing.T) {
		status, body := postJSON(t, server, "/users/signin", models.User{Username: "alice", PasswordHash: "digest-alice"})
		if status != http.StatusOK {
			t.Fatalf("status=%d body=%v", status, body)
		}
		if body["password_hash"] != "digest-alice" {
			t.Fatalf("signin must return the stored record, got %v", body)
		}
	})

	t.Run("signin failures use the legacy error envelope", func(t *testing.T) {
		status, body := postJSON(t, server, "/users/signin", models.User{Username: "alice", PasswordHash: "wrong"})
		if status != http.StatusOK || body["error"] != "Incorrect password" {
			t.Fatalf("status=%d body=%v", status, body)
		}
		status, body = postJSON(t, server, "/users/signin", models.User{Username: "nobody", PasswordHash: "x"})
		if status != http.StatusOK || body["error"] != "User not found" {
			t.Fatalf("status=%d body=%v", status, body)
		}
	})

	t.Run("profile lookup redacts the digest", func(t *testing.T) {
		status, body := getJSON(t, server, "/users/alice")
		if status != http.StatusOK {
			t.Fatalf("status=%d body=%v", status, body)
		}
		if body["password_hash"] != "" {
			t.Fatalf("digest leaked: %v", body["password_hash"])
		}
	})

	t.Run("update merges fields", func(t *testing.T) {
		status, body := postJSON(t, server, "/users/update", models.User{Username: "alice", DisplayName: "Alice L"})
		if status != http.StatusOK || body["success"] != true {
			t.Fatalf("status=%d body=%v", status, body)
		}
		_, profile := getJSON(t, server, "/users/alice")
		if profile["display_name"] != "Alice L" {
			t.Fatalf("display name not updated: %v", profile)
		}
	})

	t.Run("malformed json is a 400", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/users/signup", "application/json", bytes.NewReader([]byte("{")))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status=%d", resp.StatusCode)
		}
	})
}

func TestEventEndpoints(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	signUp(t, server, "alice")

	var eventID string

	t.Run("create applies defaults and returns the id", func(t *testing.T) {
		status, body := postJSON(t, server, "/users/alice/events/create", map[string]any{
			"title": "Methods SAC",
		})
		if status != http.StatusOK || body["success"] != true {
			t.Fatalf("status=%d body=%v", status, body)
		}
		eventID, _ = body["event_id"].(string)
		if eventID != application.EventID("alice", 1) {
			t.Fatalf("unexpected event id %q", eventID)
		}

		_, profile := getJSON(t, server, "/users/alice")
		events := profile["events"].(map[string]any)
		event := events[eventID].(map[string]any)
		if event["type"] != "SAC" || event["colour"] != "#7B68EE" {
			t.Fatalf("defaults not applied: %v", event)
		}
	})

	t.Run("invalid payloads are a 422 with field errors", func(t *testing.T) {
		status, body := postJSON(t, server, "/users/alice/events/create", map[string]any{
			"title":      "Broken",
			"type":       "Party",
			"start_time": 4,
			"end_time":   2,
		})
		if status != http.StatusUnprocessableEntity {
			t.Fatalf("status=%d body=%v", status, body)
		}
		fields, _ := body["fields"].(map[string]any)
		if _, ok := fields["type"]; !ok {
			t.Fatalf("missing type field error: %v", body)
		}
		if _, ok := fields["end_time"]; !ok {
			t.Fatalf("missing end_time field error: %v", body)
		}
	})

	t.Run("edit rewrites the stored event", func(t *testing.T) {
		status, body := postJSON(t, server, "/users/alice/events/edit", map[string]any{
			"id":    eventID,
			"title": "Methods SAC (moved)",
			"type":  "Exam",
		})
		if status != http.StatusOK || body["message"] != "Event updated successfully" {
			t.Fatalf("status=%d body=%v", status, body)
		}
	})

	t.Run("editing an unknown event reports it", func(t *testing.T) {
		status, body := postJSON(t, server, "/users/alice/events/edit", map[string]any{
			"id":    "unknown",
			"title": "x",
		})
		if status != http.StatusOK || body["error"] != "Event not found" {
			t.Fatalf("status=%d body=%v", status, body)
		}
	})

	t.Run("delete removes the event", func(t *testing.T) {
		status, body := getJSON(t, server, "/users/alice/events/delete/"+eventID)
		if status != http.StatusOK || body["message"] != "Event deleted successfully" {
			t.Fatalf("status=%d body=%v", status, body)
		}
		status, body = getJSON(t, server, "/users/alice/events/delete/"+eventID)
		if status != http.StatusOK || body["error"] != "Event not found" {
			t.Fatalf("status=%d body=%v", status, body)
		}
	})
}

func TestGroupEndpoints(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	signUp(t, server, "alice")
	signUp(t, server, "bob")

	var groupID string

	t.Run("create returns the digest id", func(t *testing.T) {
		status, body := postJSON(t, server, "/groups/create", models.Group{
			Name:    "Math",
			School:  "Hogwarts",
			Members: []string{"alice"},
			Owner:   "alice",
		})
		if status != http.StatusOK || body["success"] != true {
			t.Fatalf("status=%d body=%v", status, body)
		}
		groupID, _ = body["group_id"].(string)
		if groupID != application.GroupID("Math", "Hogwarts") {
			t.Fatalf("unexpected group id %q", groupID)
		}
	})

	t.Run("duplicate create reports the conflict", func(t *testing.T) {
		status, body := postJSON(t, server, "/groups/create", models.Group{Name: "Math", School: "Hogwarts"})
		if status != http.StatusOK || body["error"] != "Group already exists" {
			t.Fatalf("status=%d body=%v", status, body)
		}
	})

	t.Run("the table lists every group", func(t *testing.T) {
		status, body := getJSON(t, server, "/groups")
		if status != http.StatusOK {
			t.Fatalf("status=%d", status)
		}
		if _, ok := body[groupID]; !ok {
			t.Fatalf("group missing from table: %v", body)
		}
	})

	t.Run("join and leave update membership", func(t *testing.T) {
		status, body := postJSON(t, server, "/groups/"+groupID+"/join", models.User{Username: "bob"})
		if status != http.StatusOK || body["message"] != "User joined the group successfully" {
			t.Fatalf("join: status=%d body=%v", status, body)
		}
		status, body = postJSON(t, server, "/groups/"+groupID+"/leave", models.User{Username: "bob"})
		if status != http.StatusOK || body["message"] != "User left the group successfully" {
			t.Fatalf("leave: status=%d body=%v", status, body)
		}
	})

	t.Run("lookup of a missing group reports it", func(t *testing.T) {
		status, body := getJSON(t, server, "/groups/doesnotexist")
		if status != http.StatusOK || body["error"] != "Group not found" {
			t.Fatalf("status=%d body=%v", status, body)
		}
	})

	t.Run("delete removes the group", func(t *testing.T) {
		status, body := getJSON(t, server, "/groups/"+groupID+"/delete")
		if status != http.StatusOK || body["message"] != "Group deleted successfully" {
			t.Fatalf("status=%d body=%v", status, body)
		}
		status, body = getJSON(t, server, "/groups/"+groupID)
		if status != http.StatusOK || body["error"] != "Group not found" {
			t.Fatalf("status=%d body=%v", status, body)
		}
	})
}

func TestSharedEventFlow(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	signUp(t, server, "alice")
	signUp(t, server, "bob")

	_, body := postJSON(t, server, "/groups/create", models.Group{
		Name:    "Physics",
		School:  "Hogwarts",
		Members: []string{"alice", "bob"},
		Owner:   "alice",
	})
	groupID := body["group_id"].(string)

	_, body = postJSON(t, server, "/users/alice/events/create", map[string]any{
		"title":      "Prac exam",
		"type":       "Exam",
		"date":       "2026-03-10",
		"start_time": 1,
		"end_time":   3,
		"group_id":   groupID,
		"visible":    true,
	})
	eventID := body["event_id"].(string)

	status, group := getJSON(t, server, "/groups/"+groupID)
	if status != http.StatusOK {
		t.Fatalf("group fetch: status=%d", status)
	}
	events := group["events"].(map[string]any)
	mirror, ok := events[eventID].(map[string]any)
	if !ok {
		t.Fatalf("event not mirrored into the group: %v", events)
	}
	if _, hasLink := mirror["group_id"]; hasLink {
		t.Fatalf("projection must not carry the group link: %v", mirror)
	}
	if mirror["owner"] != "alice" {
		t.Fatalf("projection lost the owner: %v", mirror)
	}

	status, body = getJSON(t, server, "/groups/"+groupID+"/events/delete/"+eventID)
	if status != http.StatusOK || body["message"] != "Event deleted successfully" {
		t.Fatalf("group event delete: status=%d body=%v", status, body)
	}

	_, profile := getJSON(t, server, "/users/alice")
	if _, ok := profile["events"].(map[string]any)[eventID]; ok {
		t.Fatalf("cascade left the event in the owner's map")
	}
}

func TestReferenceAndFallbackEndpoints(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	t.Run("subjects come from the data directory", func(t *testing.T) {
		status, body := getJSON(t, server, "/subjects")
		if status != http.StatusOK {
			t.Fatalf("status=%d", status)
		}
		subjects, _ := body["subjects"].([]any)
		if len(subjects) != 2 {
			t.Fatalf("unexpected subjects: %v", body)
		}
	})

	t.Run("missing reference files yield empty lists", func(t *testing.T) {
		status, body := getJSON(t, server, "/schools")
		if status != http.StatusOK {
			t.Fatalf("status=%d", status)
		}
		if schools, ok := body["schools"].([]any); ok && len(schools) != 0 {
			t.Fatalf("expected empty list, got %v", body)
		}
	})

	t.Run("the 404 route answers in the error envelope", func(t *testing.T) {
		status, body := getJSON(t, server, "/404")
		if status != http.StatusOK || body["error"] != "404 Not Found" {
			t.Fatalf("status=%d body=%v", status, body)
		}
	})

	t.Run("wrong methods are rejected", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/users/signin")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("status=%d", resp.StatusCode)
		}
	})
}
