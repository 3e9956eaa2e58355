package consistency

import (
	"context"
	"testing"
	"time"

	"github.com/kalendra/kalendra/internal/utils"
	"github.com/kalendra/kalendra/pkg/calendar_event"
	"github.com/kalendra/kalendra/pkg/duty_schedule"
	"github.com/kalendra/kalendra/pkg/event_sync"
	"github.com/kalendra/kalendra/pkg/one_on_one"
	"github.com/kalendra/kalendra/pkg/team_member"
	"github.com/kalendra/kalendra/pkg/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	service   *ServiceImpl
	sync      *event_sync.ServiceImpl
	events    *calendar_event.RepositoryStub
	members   *team_member.RepositoryStub
	oneOnOnes *one_on_one.RepositoryStub
	duties    *duty_schedule.RepositoryStub
	clock     *utils.MockClock
	ctx       context.Context
}

// newFixture pins the clock to 2025-06-01, so with yearsBack=1/yearsAhead=2
// the birthday window is [2024, 2027].
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		events:    calendar_event.NewRepositoryStub(),
		members:   team_member.NewRepositoryStub(),
		oneOnOnes: one_on_one.NewRepositoryStub(),
		duties:    duty_schedule.NewRepositoryStub(),
		clock:     &utils.MockClock{FixedNow: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)},
		ctx:       tenant.WithTenant(context.Background(), tenant.Tenant{Id: 1, Uid: "acme"}),
	}
	f.service = NewService(f.events, f.members, f.oneOnOnes, f.duties, f.clock, 1, 2)
	f.sync = event_sync.NewService(f.events, f.members, f.oneOnOnes, f.duties, f.clock, 1, 2)
	return f
}

// seedAndSync creates one member with a birthday, one upcoming one-on-one and
// one duty schedule, then runs a full synchronization: 4 birthday events, one
// meeting event, one duty event.
func (f *fixture) seedAndSync(t *testing.T) {
	t.Helper()
	_, err := f.members.Create(f.ctx, 1, team_member.TeamMember{Id: "tm1", Name: "Alice", Birthday: strPtr("1990-05-15")})
	require.NoError(t, err)
	meetingDate := time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)
	_, err = f.oneOnOnes.Create(f.ctx, 1, one_on_one.OneOnOne{Id: "oo1", TeamMemberId: "tm1", NextMeetingDate: &meetingDate})
	require.NoError(t, err)
	_, err = f.duties.Create(f.ctx, 1, duty_schedule.DutySchedule{
		Id: "ds1", TeamMemberId: "tm1", DutyType: "on-call",
		StartDate: time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	summary, err := f.sync.SynchronizeAllEvents(f.ctx)
	require.NoError(t, err)
	require.True(t, summary.Success)
	require.Len(t, f.events.AllEvents(), 6)
}

func TestValidatorSoundOnFreshSync(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	report, err := f.service.ValidateEventConsistency(f.ctx)
	require.NoError(t, err)

	assert.True(t, report.IsValid)
	assert.Equal(t, 0, report.InconsistenciesFound)
	assert.Empty(t, report.Inconsistencies)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 6, report.TotalEventsValidated)
}

func TestValidatorDetectsMissing(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	// Out-of-band loss of the 2024 birthday event.
	victim := f.events.AllEvents()[0]
	require.NoError(t, f.events.Delete(f.ctx, 1, victim.UID))

	report, err := f.service.ValidateEventConsistency(f.ctx)
	require.NoError(t, err)

	assert.False(t, report.IsValid)
	require.Equal(t, 1, report.InconsistenciesFound)
	inc := report.Inconsistencies[0]
	assert.Equal(t, Missing, inc.Type)
	assert.Equal(t, victim.Key().String(), inc.Key)
	require.NotNil(t, inc.Expected)
	assert.Equal(t, victim.StartDate, inc.Expected.StartDate)
}

func TestValidatorDetectsOrphans(t *testing.T) {
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

	report, err := f.service.ValidateEventConsistency(f.ctx)
	require.NoError(t, err)

	require.Equal(t, 1, report.InconsistenciesFound)
	assert.Equal(t, Orphaned, report.Inconsistencies[0].Type)
}

func TestValidatorTreatsClearedBirthdayEventsAsOrphans(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	member, err := f.members.GetById(f.ctx, 1, "tm1")
	require.NoError(t, err)
	member.Birthday = nil
	require.NoError(t, f.members.Update(f.ctx, 1, member))

	report, err := f.service.ValidateEventConsistency(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, report.InconsistenciesFound)
	for _, inc := range report.Inconsistencies {
		assert.Equal(t, Orphaned, inc.Type)
	}
}

func TestValidatorDetectsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	// A crashed pass left a second copy of the 2024 birthday under a spare
	// ordinal. The later-created copy is the one flagged.
	original := f.events.AllEvents()[0]
	dup := original
	dup.UID = ""
	dup.Ordinal = 1
	dup.CreatedAt = original.CreatedAt.Add(time.Hour)
	seeded := f.events.SeedEvent(1, dup)

	report, err := f.service.ValidateEventConsistency(f.ctx)
	require.NoError(t, err)

	require.Equal(t, 1, report.InconsistenciesFound)
	inc := report.Inconsistencies[0]
	assert.Equal(t, Duplicate, inc.Type)
	assert.Equal(t, seeded.UID, inc.EventUID)
}

func TestValidatorDetectsDrift(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	drifted := f.events.AllEvents()[0]
	drifted.StartDate = drifted.StartDate.AddDate(0, 0, 3)
	drifted.EndDate = drifted.StartDate
	drifted.Notes = "user note"
	f.events.SeedEvent(1, drifted)

	report, err := f.service.ValidateEventConsistency(f.ctx)
	require.NoError(t, err)

	require.Equal(t, 1, report.InconsistenciesFound)
	inc := report.Inconsistencies[0]
	assert.Equal(t, Drifted, inc.Type)
	assert.Equal(t, drifted.UID, inc.EventUID)
	require.NotNil(t, inc.Expected)
	assert.Equal(t, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), inc.Expected.StartDate)
	assert.Equal(t, "user note", inc.Expected.Notes)
}

func TestValidatorSkipsUnparseableMember(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	member, err := f.members.GetById(f.ctx, 1, "tm1")
	require.NoError(t, err)
	member.Birthday = strPtr("not-a-date")
	require.NoError(t, f.members.Update(f.ctx, 1, member))

	report, err := f.service.ValidateEventConsistency(f.ctx)
	require.NoError(t, err)

	// The member's birthday events are unclassifiable, not orphans.
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "tm1")
	for _, inc := range report.Inconsistencies {
		assert.NotEqual(t, Orphaned, inc.Type)
	}
}

func TestValidatorIsReadOnly(t *testing.T) {
	f := newFixture(t)
	f.seedAndSync(t)

	victim := f.events.AllEvents()[0]
	require.NoError(t, f.events.Delete(f.ctx, 1, victim.UID))
	before := f.events.AllEvents()

	_, err := f.service.ValidateEventConsistency(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, before, f.events.AllEvents())
}
