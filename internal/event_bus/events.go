package event_bus

import "time"

// Source-entity mutation events. The app wiring subscribes the synchronization
// engine to these so every mutation triggers the matching scoped sync pass.
const (
	TeamMemberCreatedEvent   EventType = "team_member.created"
	TeamMemberUpdatedEvent   EventType = "team_member.updated"
	TeamMemberDeletedEvent   EventType = "team_member.deleted"
	OneOnOneChangedEvent     EventType = "one_on_one.changed"
	DutyScheduleChangedEvent EventType = "duty_schedule.changed"
)

type TeamMemberCreated struct {
	Id       string
	Name     string
	Birthday *string
}

type TeamMemberUpdated struct {
	Id       string
	Name     string
	Birthday *string
}

type TeamMemberDeleted struct {
	Id string
}

type OneOnOneChanged struct {
	Id              string
	TeamMemberId    string
	NextMeetingDate *time.Time
}

type DutyScheduleChanged struct {
	Id string
}
