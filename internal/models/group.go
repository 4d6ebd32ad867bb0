package models

// Group represents a shared class group and the event projections its members
// have shared into it.
type Group struct {
	// ID is the sha256 digest of Name and School, making name+school pairs
	// unique and the id stable across processes.
	ID string `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description"`
	School      string `json:"school"`

	// Members lists usernames in join order. The order matters: when the
	// owner leaves, ownership falls back to the first remaining member.
	Members []string `json:"members"`

	// Events maps event id to the shared projection of a member's event.
	Events map[string]GroupEvent `json:"events"`

	Colour string `json:"colour"`

	// Owner is the username of the current owner. It is empty exactly when
	// Members is empty; otherwise it is always one of Members.
	Owner string `json:"owner"`
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing stored state.
func (g Group) Clone() Group {
	clone := g
	clone.Members = append([]string(nil), g.Members...)
	clone.Events = make(map[string]GroupEvent, len(g.Events))
	for id, event := range g.Events {
		clone.Events[id] = event
	}
	return clone
}

// HasMember reports whether username is currently in the member list.
func (g Group) HasMember(username string) bool {
	for _, member := range g.Members {
		if member == username {
			return true
		}
	}
	return false
}
