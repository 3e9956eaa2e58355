package calendar_event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kalendra/kalendra/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func birthdayFixture(year int) Event {
	day := time.Date(year, time.May, 15, 0, 0, 0, 0, time.UTC)
	return Event{
		Title:            "Alice Birthday",
		StartDate:        day,
		EndDate:          day,
		EventType:        EventTypeBirthday,
		AllDay:           true,
		Recurrence:       &Recurrence{Type: "yearly", Interval: 1},
		TeamMemberID:     "tm1",
		LinkedEntityType: EntityTeamMember,
		LinkedEntityID:   "tm1",
		OccurrenceYear:   year,
	}
}

func TestUpsertCreatesAndReportsConflictAsExisting(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	created, wasCreated, err := repo.Upsert(ctx, tenantId, birthdayFixture(2024))
	require.NoError(t, err)
	assert.True(t, wasCreated)
	assert.NotEmpty(t, created.UID)

	// Same derived key again: benign, returns the stored record.
	again, wasCreated, err := repo.Upsert(ctx, tenantId, birthdayFixture(2024))
	require.NoError(t, err)
	assert.False(t, wasCreated)
	assert.Equal(t, created.UID, again.UID)

	all, err := repo.GetAll(ctx, tenantId)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetByKey(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	stored, _, err := repo.Upsert(ctx, tenantId, birthdayFixture(2024))
	require.NoError(t, err)

	found, err := repo.GetByKey(ctx, tenantId, stored.Key())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, stored.UID, found.UID)
	assert.Equal(t, stored.StartDate, found.StartDate)
	require.NotNil(t, found.Recurrence)
	assert.Equal(t, "yearly", found.Recurrence.Type)

	missing, err := repo.GetByKey(ctx, tenantId, DerivedKey{EntityType: EntityTeamMember, EntityID: "tm1", Year: 1999})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetEventsReturnsOverlappingRange(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	for _, year := range []int{2024, 2025, 2026} {
		_, _, err := repo.Upsert(ctx, tenantId, birthdayFixture(year))
		require.NoError(t, err)
	}

	events, err := repo.GetEvents(ctx, tenantId,
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 2025, events[0].OccurrenceYear)
}

func TestUpdateSchedulePreservesNotesAndOverrideFlag(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	event := birthdayFixture(2024)
	event.Notes = "bring candles"
	event.TitleOverridden = true
	stored, _, err := repo.Upsert(ctx, tenantId, event)
	require.NoError(t, err)

	moved := stored
	moved.StartDate = time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	moved.EndDate = moved.StartDate
	require.NoError(t, repo.UpdateSchedule(ctx, tenantId, moved))

	found, err := repo.GetByKey(ctx, tenantId, stored.Key())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, moved.StartDate, found.StartDate)
	assert.Equal(t, "bring candles", found.Notes)
	assert.True(t, found.TitleOverridden)
}

func TestUpdateUserFieldsPinsTitle(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	stored, _, err := repo.Upsert(ctx, tenantId, birthdayFixture(2024))
	require.NoError(t, err)
	assert.False(t, stored.TitleOverridden)

	title := "Cake Day"
	notes := "bring candles"
	require.NoError(t, repo.UpdateUserFields(ctx, tenantId, stored.UID, &title, &notes))

	found, err := repo.GetByKey(ctx, tenantId, stored.Key())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Cake Day", found.Title)
	assert.Equal(t, "bring candles", found.Notes)
	assert.True(t, found.TitleOverridden)

	// A notes-only edit must not pin the title.
	second, _, err := repo.Upsert(ctx, tenantId, birthdayFixture(2025))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateUserFields(ctx, tenantId, second.UID, nil, &notes))
	found, err = repo.GetByKey(ctx, tenantId, second.Key())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.TitleOverridden)
}

func TestDeleteByLinkedEntityAndByTeamMember(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	for _, year := range []int{2024, 2025} {
		_, _, err := repo.Upsert(ctx, tenantId, birthdayFixture(year))
		require.NoError(t, err)
	}
	meetingStart := time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)
	_, _, err := repo.Upsert(ctx, tenantId, Event{
		Title:            "Alice 1:1",
		StartDate:        meetingStart,
		EndDate:          meetingStart.Add(30 * time.Minute),
		EventType:        EventTypeOneOnOne,
		TeamMemberID:     "tm1",
		LinkedEntityType: EntityOneOnOne,
		LinkedEntityID:   "oo1",
		OccurrenceYear:   2025,
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByLinkedEntity(ctx, tenantId, EntityTeamMember, "tm1"))
	remaining, err := repo.GetAll(ctx, tenantId)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, EventTypeOneOnOne, remaining[0].EventType)

	require.NoError(t, repo.DeleteByTeamMember(ctx, tenantId, "tm1"))
	remaining, err = repo.GetAll(ctx, tenantId)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantId := test_utils.SeedTenant(t, db, 1, "acme")
	repo := NewRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.WithTransaction(ctx, func(txRepo Repository) error {
		if _, _, err := txRepo.Upsert(ctx, tenantId, birthdayFixture(2024)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := repo.GetAll(ctx, tenantId)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTenantScoping(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	tenantA := test_utils.SeedTenant(t, db, 1, "acme")
	tenantB := test_utils.SeedTenant(t, db, 2, "globex")
	repo := NewRepository(db)
	ctx := context.Background()

	_, _, err := repo.Upsert(ctx, tenantA, birthdayFixture(2024))
	require.NoError(t, err)

	other, err := repo.GetAll(ctx, tenantB)
	require.NoError(t, err)
	assert.Empty(t, other)

	// The same derived key is independent per tenant.
	_, wasCreated, err := repo.Upsert(ctx, tenantB, birthdayFixture(2024))
	require.NoError(t, err)
	assert.True(t, wasCreated)
}
