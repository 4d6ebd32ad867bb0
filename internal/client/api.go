package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNetwork wraps transport-level failures: the server could not be reached
// or answered with something other than a well-formed payload.
var ErrNetwork = errors.New("client: server unreachable")

const requestTimeout = 10 * time.Second

// api performs JSON requests against the scheduling server and decodes the
// uniform response envelope. Domain failures arrive as a 200 with an "error"
// field, so any non-200 status is treated as a transport problem.
type api struct {
	baseURL    string
	httpClient *http.Client
}

func newAPI(baseURL string) *api {
	return &api{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (a *api) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return a.do(req, out)
}

func (a *api) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("client: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *api) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrNetwork, resp.StatusCode)
	}

	var envelope struct {
		Error string `json:"error"`
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return domainError(envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
		}
	}
	return nil
}

// Domain errors the client distinguishes by the server's message text.
var (
	ErrNotFound           = errors.New("client: not found")
	ErrAlreadyExists      = errors.New("client: already exists")
	ErrInvalidCredentials = errors.New("client: invalid credentials")
)

func domainError(message string) error {
	switch message {
	case "User not found", "Group not found", "Event not found":
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case "User already exists", "Group already exists":
		return fmt.Errorf("%w: %s", ErrAlreadyExists, message)
	case "Incorrect password":
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, message)
	default:
		return errors.New(message)
	}
}
