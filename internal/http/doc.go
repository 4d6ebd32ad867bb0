// Package http exposes the trackademic service over JSON endpoints.
//
// The wire contract is shared with the original desktop client: domain
// failures (missing user, wrong password, duplicate group) are reported as
// HTTP 200 with an {"error": "..."} body, because clients treat any non-200
// status as a network failure. Only undecodable requests (400) and invalid
// field values (422) use error statuses.
package http
