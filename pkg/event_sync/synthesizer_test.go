package event_sync

import (
	"testing"
	"time"

	"github.com/kalendra/kalendra/pkg/calendar_event"
	"github.com/kalendra/kalendra/pkg/duty_schedule"
	"github.com/kalendra/kalendra/pkg/one_on_one"
	"github.com/kalendra/kalendra/pkg/team_member"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBirthdayEvent(t *testing.T) {
	member := team_member.TeamMember{Id: "tm1", Name: "Alice", Birthday: strPtr("1990-05-15")}
	occurrence := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)

	event := BirthdayEvent(member, occurrence)

	assert.Equal(t, "Alice Birthday", event.Title)
	assert.Equal(t, calendar_event.EventTypeBirthday, event.EventType)
	assert.True(t, event.AllDay)
	assert.Equal(t, occurrence, event.StartDate)
	assert.Equal(t, occurrence, event.EndDate)
	require.NotNil(t, event.Recurrence)
	assert.Equal(t, "yearly", event.Recurrence.Type)
	assert.Equal(t, 1, event.Recurrence.Interval)
	assert.Equal(t, calendar_event.DerivedKey{
		EntityType: calendar_event.EntityTeamMember,
		EntityID:   "tm1",
		Year:       2024,
	}, event.Key())
}

func TestOneOnOneEvent(t *testing.T) {
	meetingDate := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	meeting := one_on_one.OneOnOne{Id: "oo1", TeamMemberId: "tm1", NextMeetingDate: &meetingDate}

	event, err := OneOnOneEvent("Alice", meeting)
	require.NoError(t, err)

	assert.Equal(t, "Alice 1:1", event.Title)
	assert.Equal(t, calendar_event.EventTypeOneOnOne, event.EventType)
	assert.False(t, event.AllDay)
	assert.Equal(t, meetingDate, event.StartDate)
	assert.Equal(t, meetingDate.Add(OneOnOneDuration), event.EndDate)
	assert.Equal(t, calendar_event.DerivedKey{
		EntityType: calendar_event.EntityOneOnOne,
		EntityID:   "oo1",
		Year:       2025,
	}, event.Key())
}

func TestOneOnOneEventWithoutDate(t *testing.T) {
	meeting := one_on_one.OneOnOne{Id: "oo1", TeamMemberId: "tm1"}

	_, err := OneOnOneEvent("Alice", meeting)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "oo1", validationErr.EntityId)
}

func TestDutyEventCopiesBoundsVerbatim(t *testing.T) {
	start := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 12, 18, 0, 0, 0, time.UTC)
	schedule := duty_schedule.DutySchedule{
		Id: "ds1", TeamMemberId: "tm1", DutyType: "on-call",
		StartDate: start, EndDate: end,
	}

	event := DutyEvent("Alice", schedule)

	assert.Equal(t, "Alice Duty: on-call", event.Title)
	assert.Equal(t, calendar_event.EventTypeDuty, event.EventType)
	assert.Equal(t, start, event.StartDate)
	assert.Equal(t, end, event.EndDate)
	assert.Equal(t, 2025, event.OccurrenceYear)
}

func TestScheduleDrifted(t *testing.T) {
	member := team_member.TeamMember{Id: "tm1", Name: "Alice"}
	occurrence := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)
	expected := BirthdayEvent(member, occurrence)

	stored := expected
	stored.UID = "ev1"
	assert.False(t, ScheduleDrifted(stored, expected))

	moved := stored
	moved.StartDate = occurrence.AddDate(0, 1, 5)
	moved.EndDate = moved.StartDate
	assert.True(t, ScheduleDrifted(moved, expected))

	renamed := stored
	renamed.Title = "Alice's Big Day"
	assert.True(t, ScheduleDrifted(renamed, expected))

	overridden := renamed
	overridden.TitleOverridden = true
	assert.False(t, ScheduleDrifted(overridden, expected))
}

func TestMergeSchedulePreservesUserFields(t *testing.T) {
	member := team_member.TeamMember{Id: "tm1", Name: "Alice"}
	expected := BirthdayEvent(member, time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC))

	stored := BirthdayEvent(member, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC))
	stored.UID = "ev1"
	stored.Title = "Cake Day"
	stored.TitleOverridden = true
	stored.Notes = "bring candles"
	stored.CreatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	merged := MergeSchedule(stored, expected)

	assert.Equal(t, "ev1", merged.UID)
	assert.Equal(t, "Cake Day", merged.Title)
	assert.Equal(t, "bring candles", merged.Notes)
	assert.True(t, merged.TitleOverridden)
	assert.Equal(t, stored.CreatedAt, merged.CreatedAt)
	assert.Equal(t, expected.StartDate, merged.StartDate)
	assert.Equal(t, expected.EndDate, merged.EndDate)
}
