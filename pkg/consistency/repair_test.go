package consistency

import (
	"testing"
	"time"

	"github.com/kalendra/kalendra/pkg/calendar_event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairRecreatesMissingEvents(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	victim := f.events.AllEvents()[0]
	require.NoError(t, f.events.Delete(f.ctx, 1, victim.UID))

	result, err := f.service.RepairMissingEvents(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Repaired)
	assert.Equal(t, 0, result.Removed)
	assert.Empty(t, result.Errors)

	report, err := f.service.ValidateEventConsistency(f.ctx)
	require.NoError(t, err)
	assert.True(t, report.IsValid)
	assert.Len(t, f.events.AllEvents(), 6)
}

func TestRepairResolvesDuplicatesKeepingEarliest(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	original := f.events.AllEvents()[0]
	dup := original
	dup.UID = ""
	dup.Ordinal = 1
	dup.CreatedAt = original.CreatedAt.Add(time.Hour)
	f.events.SeedEvent(1, dup)

	result, err := f.service.RepairMissingEvents(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)

	remaining, err := f.events.GetByLinkedEntity(f.ctx, 1, calendar_event.EntityTeamMember, "tm1")
	require.NoError(t, err)

	var copies []calendar_event.Event
	for _, ev := range remaining {
		if ev.OccurrenceYear == 2024 {
			copies = append(copies, ev)
		}
	}
	require.Len(t, copies, 1)
	assert.Equal(t, original.UID, copies[0].UID)
}

func TestRepairRemovesOrphans(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	f.events.SeedEvent(1, calendar_event.Event{
		Title:            "Ghost Duty: on-call",
		StartDate:        time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2025, time.May, 7, 0, 0, 0, 0, time.UTC),
		EventType:        calendar_event.EventTypeDuty,
		LinkedEntityType: calendar_event.EntityDutySchedule,
		LinkedEntityID:   "ds-gone",
		OccurrenceYear:   2025,
	})

	result, err := f.service.RepairMissingEvents(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	assert.Len(t, f.events.AllEvents(), 6)
}

func TestRepairDriftPreservesUserEdits(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	drifted := f.events.AllEvents()[0]
	drifted.StartDate = drifted.StartDate.AddDate(0, 0, 3)
	drifted.EndDate = drifted.StartDate
	drifted.Title = "Cake Day"
	drifted.TitleOverridden = true
	drifted.Notes = "bring candles"
	f.events.SeedEvent(1, drifted)

	result, err := f.service.RepairMissingEvents(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Repaired)

	repaired, err := f.events.GetByKey(f.ctx, 1, drifted.Key())
	require.NoError(t, err)
	require.NotNil(t, repaired)
	assert.Equal(t, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), repaired.StartDate)
	assert.Equal(t, "Cake Day", repaired.Title)
	assert.Equal(t, "bring candles", repaired.Notes)
}

func TestEnsureOneOnOneVisibilitySelfHeals(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	// Out-of-band loss of the meeting's derived event.
	events, err := f.events.GetByLinkedEntity(f.ctx, 1, calendar_event.EntityOneOnOne, "oo1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NoError(t, f.events.Delete(f.ctx, 1, events[0].UID))

	require.NoError(t, f.service.EnsureOneOnOneVisibility(f.ctx))

	restored, err := f.events.GetByLinkedEntity(f.ctx, 1, calendar_event.EntityOneOnOne, "oo1")
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "Alice 1:1", restored[0].Title)

	meeting, err := f.oneOnOnes.GetById(f.ctx, 1, "oo1")
	require.NoError(t, err)
	require.NotNil(t, meeting.NextMeetingCalendarEventId)
	assert.Equal(t, restored[0].UID, *meeting.NextMeetingCalendarEventId)
}

func TestEnsureOneOnOneVisibilityRemovesSurplusCopies(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	events, err := f.events.GetByLinkedEntity(f.ctx, 1, calendar_event.EntityOneOnOne, "oo1")
	require.NoError(t, err)
	require.Len(t, events, 1)

	surplus := events[0]
	surplus.UID = ""
	surplus.Ordinal = 1
	surplus.CreatedAt = events[0].CreatedAt.Add(time.Hour)
	f.events.SeedEvent(1, surplus)

	require.NoError(t, f.service.EnsureOneOnOneVisibility(f.ctx))

	remaining, err := f.events.GetByLinkedEntity(f.ctx, 1, calendar_event.EntityOneOnOne, "oo1")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestEnsureOneOnOneVisibilityIsCheapWhenConsistent(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)
	before := f.events.AllEvents()

	require.NoError(t, f.service.EnsureOneOnOneVisibility(f.ctx))

	assert.Equal(t, before, f.events.AllEvents())
}
