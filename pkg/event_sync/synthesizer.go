package event_sync

import (
	"fmt"
	"time"

	"github.com/kalendra/kalendra/pkg/calendar_event"
	"github.com/kalendra/kalendra/pkg/duty_schedule"
	"github.com/kalendra/kalendra/pkg/one_on_one"
	"github.com/kalendra/kalendra/pkg/team_member"
)

// OneOnOneDuration is the fixed length of a derived one-on-one event. The
// source entity carries only the meeting date, not a duration.
const OneOnOneDuration = 30 * time.Minute

// The synthesizer builds unpersisted calendar event drafts from source
// entities. Every draft carries a deterministic derived key, so synthesizing
// the same entity twice yields the same key and the store's upsert collapses
// the two into one record.

// BirthdayEvent builds the all-day birthday event for one concrete occurrence
// date. The occurrence must already carry the right year (see the recurrence
// package).
func BirthdayEvent(member team_member.TeamMember, occurrence time.Time) calendar_event.Event {
	return calendar_event.Event{
		Title:            fmt.Sprintf("%s Birthday", member.Name),
		StartDate:        occurrence,
		EndDate:          occurrence,
		EventType:        calendar_event.EventTypeBirthday,
		AllDay:           true,
		Recurrence:       &calendar_event.Recurrence{Type: "yearly", Interval: 1},
		TeamMemberID:     member.Id,
		LinkedEntityType: calendar_event.EntityTeamMember,
		LinkedEntityID:   member.Id,
		OccurrenceYear:   occurrence.Year(),
	}
}

// OneOnOneEvent builds the derived event for a meeting's next occurrence.
// The meeting must have a next meeting date.
func OneOnOneEvent(memberName string, meeting one_on_one.OneOnOne) (calendar_event.Event, error) {
	if meeting.NextMeetingDate == nil {
		return calendar_event.Event{}, &ValidationError{
			EntityType: "one-on-one",
			EntityId:   meeting.Id,
			Message:    "no next meeting date",
		}
	}
	start := *meeting.NextMeetingDate
	return calendar_event.Event{
		Title:            fmt.Sprintf("%s 1:1", memberName),
		StartDate:        start,
		EndDate:          start.Add(OneOnOneDuration),
		EventType:        calendar_event.EventTypeOneOnOne,
		TeamMemberID:     meeting.TeamMemberId,
		LinkedEntityType: calendar_event.EntityOneOnOne,
		LinkedEntityID:   meeting.Id,
		OccurrenceYear:   start.Year(),
	}, nil
}

// DutyEvent builds the derived event mirroring a duty schedule. Start and end
// are copied verbatim from the schedule's bounds.
func DutyEvent(memberName string, schedule duty_schedule.DutySchedule) calendar_event.Event {
	return calendar_event.Event{
		Title:            fmt.Sprintf("%s Duty: %s", memberName, schedule.DutyType),
		StartDate:        schedule.StartDate,
		EndDate:          schedule.EndDate,
		EventType:        calendar_event.EventTypeDuty,
		TeamMemberID:     schedule.TeamMemberId,
		LinkedEntityType: calendar_event.EntityDutySchedule,
		LinkedEntityID:   schedule.Id,
		OccurrenceYear:   schedule.StartDate.Year(),
	}
}

// ScheduleDrifted reports whether the stored event's scheduling fields no
// longer match what synthesis currently produces. The title only counts as
// drift when the user has not overridden it; notes never count.
func ScheduleDrifted(stored, expected calendar_event.Event) bool {
	if !stored.StartDate.Equal(expected.StartDate) || !stored.EndDate.Equal(expected.EndDate) {
		return true
	}
	if stored.AllDay != expected.AllDay || stored.TeamMemberID != expected.TeamMemberID {
		return true
	}
	if !recurrenceEqual(stored.Recurrence, expected.Recurrence) {
		return true
	}
	if !stored.TitleOverridden && stored.Title != expected.Title {
		return true
	}
	return false
}

// MergeSchedule applies the expected scheduling fields onto the stored event
// while preserving everything the user owns: identity, notes and an
// overridden title.
func MergeSchedule(stored, expected calendar_event.Event) calendar_event.Event {
	merged := expected
	merged.UID = stored.UID
	merged.Notes = stored.Notes
	merged.TitleOverridden = stored.TitleOverridden
	merged.CreatedAt = stored.CreatedAt
	if stored.TitleOverridden {
		merged.Title = stored.Title
	}
	return merged
}

func recurrenceEqual(a, b *calendar_event.Recurrence) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Type == b.Type && a.Interval == b.Interval
}
