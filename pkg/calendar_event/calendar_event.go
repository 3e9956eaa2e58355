package calendar_event

import (
	"fmt"
	"time"
)

// EventType classifies calendar events. Downstream presentation must tolerate
// values outside this set (forward-compatibility contract).
type EventType string

const (
	EventTypeOneOnOne    EventType = "one_on_one"
	EventTypeBirthday    EventType = "birthday"
	EventTypeDuty        EventType = "duty"
	EventTypeOutOfOffice EventType = "out_of_office"
	EventTypeMeeting     EventType = "meeting"
)

// EntityType identifies the kind of source entity a derived event mirrors.
type EntityType string

const (
	EntityTeamMember   EntityType = "team_member"
	EntityOneOnOne     EntityType = "one_on_one"
	EntityDutySchedule EntityType = "duty_schedule"
)

// Recurrence is a small closed tagged variant, not a general recurrence
// grammar. Only {Type: "yearly", Interval: 1} is produced today; extend by
// adding variants rather than generalizing.
type Recurrence struct {
	Type     string `json:"type"`
	Interval int    `json:"interval"`
}

// Event is a derived calendar event record. Events of the derived types are
// created and mutated exclusively by the synchronization engine and the
// repair service; Title and Notes may carry user edits that synchronization
// must preserve.
type Event struct {
	UID              string
	Title            string
	StartDate        time.Time
	EndDate          time.Time
	EventType        EventType
	AllDay           bool
	Recurrence       *Recurrence
	TeamMemberID     string
	LinkedEntityType EntityType
	LinkedEntityID   string
	OccurrenceYear   int
	Ordinal          int
	Notes            string
	TitleOverridden  bool
	CreatedAt        time.Time
}

// DerivedKey identifies one occurrence of one source entity. The tuple is
// unique per tenant: no two derived events may represent the same occurrence.
// Ordinal is only meaningful for source entities that can yield multiple
// concurrent occurrences (duty schedules); it is zero everywhere else.
type DerivedKey struct {
	EntityType EntityType
	EntityID   string
	Year       int
	Ordinal    int
}

func (k DerivedKey) String() string {
	return fmt.Sprintf("%s:%s:%d:%d", k.EntityType, k.EntityID, k.Year, k.Ordinal)
}

// Key returns the event's derived key.
func (e Event) Key() DerivedKey {
	return DerivedKey{
		EntityType: e.LinkedEntityType,
		EntityID:   e.LinkedEntityID,
		Year:       e.OccurrenceYear,
		Ordinal:    e.Ordinal,
	}
}

// Derived reports whether this event type is computed from a source entity.
// Non-derived types (meetings, out-of-office) are user-authored and never
// touched by synchronization.
func (e Event) Derived() bool {
	switch e.EventType {
	case EventTypeOneOnOne, EventTypeBirthday, EventTypeDuty:
		return true
	}
	return false
}
