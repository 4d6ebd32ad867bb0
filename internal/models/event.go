package models

// EventType classifies an event for display and filtering.
type EventType string

const (
	EventTypeSAC      EventType = "SAC"
	EventTypeHomework EventType = "Homework"
	EventTypeExam     EventType = "Exam"
	EventTypeOther    EventType = "Other"
)

// ValidEventType reports whether value is one of the supported event types.
func ValidEventType(value EventType) bool {
	switch value {
	case EventTypeSAC, EventTypeHomework, EventTypeExam, EventTypeOther:
		return true
	}
	return false
}

// Event is a user-held calendar entry.
type Event struct {
	// ID is the sha256 digest of the owner's username and NumericalID. It is
	// assigned once at creation and never re-derived.
	ID string `json:"id"`

	// NumericalID is a monotonically increasing integer unique per user,
	// assigned as max(existing)+1.
	NumericalID int `json:"numerical_id"`

	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        EventType `json:"type"`

	// Date is an ISO calendar date (yyyy-mm-dd).
	Date string `json:"date"`

	// StartTime and EndTime are integer times of day; EndTime must be
	// strictly greater than StartTime.
	StartTime int `json:"start_time"`
	EndTime   int `json:"end_time"`

	// GroupID links the event to a group when non-empty.
	GroupID string `json:"group_id"`

	Colour string `json:"colour"`

	// Owner is always the creating user's username.
	Owner string `json:"owner"`

	// Visible controls whether the event is mirrored into its group.
	Visible bool `json:"visible"`
}

// GroupEvent is the projection of an Event stored inside a group, keyed by the
// same event id. The group link is implicit, so GroupID is omitted; Owner is
// kept so members can see whose event it is.
type GroupEvent struct {
	ID          string    `json:"id"`
	NumericalID int       `json:"numerical_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        EventType `json:"type"`
	Date        string    `json:"date"`
	StartTime   int       `json:"start_time"`
	EndTime     int       `json:"end_time"`
	Colour      string    `json:"colour"`
	Owner       string    `json:"owner"`
	Visible     bool      `json:"visible"`
}

// Project converts the event into the shape stored inside its group.
func (e Event) Project() GroupEvent {
	return GroupEvent{
		ID:          e.ID,
		NumericalID: e.NumericalID,
		Title:       e.Title,
		Description: e.Description,
		Type:        e.Type,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Colour:      e.Colour,
		Owner:       e.Owner,
		Visible:     e.Visible,
	}
}
