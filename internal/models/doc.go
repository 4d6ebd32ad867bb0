// Package models defines the domain types shared by the service, persistence,
// and client layers.
//
// Users and groups are the two top-level records. A user owns a private map of
// events; a group holds a projection of each member event that was shared into
// it (a GroupEvent, keyed by the same event id). Relationships are expressed
// with id strings rather than pointers so records stay safe to marshal as
// standalone JSON documents.
//
// Identifiers are content addressed: an event id is the sha256 hex digest of
// the owner's username and the event's per-user numerical id, and a group id is
// the digest of the group name and school. The digests are stable lookup keys,
// not a security boundary.
package models
