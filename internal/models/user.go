package models

// User represents a registered account together with its private event
// collection and group memberships.
type User struct {
	// Username is the unique primary key for the account.
	Username string `json:"username"`

	// DisplayName is the human readable name shown in clients.
	DisplayName string `json:"display_name"`

	// PasswordHash is the client-side sha256 digest of the password. It is
	// stored verbatim and compared verbatim; profile fetches redact it.
	PasswordHash string `json:"password_hash"`

	// School the account belongs to; also scopes group ids.
	School string `json:"school"`

	// Groups maps group id to a membership flag. Insertion order is
	// irrelevant; the flag is always true while the membership exists.
	Groups map[string]bool `json:"groups"`

	// Events maps event id to the user's private copy of the event.
	Events map[string]Event `json:"events"`
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing stored state.
func (u User) Clone() User {
	clone := u
	clone.Groups = make(map[string]bool, len(u.Groups))
	for id, member := range u.Groups {
		clone.Groups[id] = member
	}
	clone.Events = make(map[string]Event, len(u.Events))
	for id, event := range u.Events {
		clone.Events[id] = event
	}
	return clone
}

// Redacted returns a copy safe to return from a plain profile lookup: the
// stored password digest is blanked, everything else is preserved.
func (u User) Redacted() User {
	clone := u.Clone()
	clone.PasswordHash = ""
	return clone
}
