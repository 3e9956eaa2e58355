package team_member

import (
	"context"
	"errors"
	"testing"

	"github.com/kalendra/kalendra/internal/event_bus"
	"github.com/kalendra/kalendra/pkg/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context {
	return tenant.WithTenant(context.Background(), tenant.Tenant{Id: 1, Uid: "acme"})
}

func TestCreateRejectsMalformedBirthday(t *testing.T) {
	service := NewService(NewRepositoryStub(), event_bus.NewEventBus())

	_, err := service.Create(testCtx(), TeamMember{Name: "Alice", Birthday: strPtr("15-05-1990")})
	assert.Error(t, err)
}

func TestCreatePublishesEvent(t *testing.T) {
	bus := event_bus.NewEventBus()
	service := NewService(NewRepositoryStub(), bus)

	var received event_bus.TeamMemberCreated
	event_bus.SubscribeTyped(bus, event_bus.TeamMemberCreatedEvent,
		func(e event_bus.EventT[event_bus.TeamMemberCreated]) error {
			received = e.Data
			return nil
		})

	created, err := service.Create(testCtx(), TeamMember{Name: "Alice", Birthday: strPtr("1990-05-15")})
	require.NoError(t, err)

	assert.Equal(t, created.Id, received.Id)
	assert.Equal(t, "Alice", received.Name)
	require.NotNil(t, received.Birthday)
	assert.Equal(t, "1990-05-15", *received.Birthday)
}

func TestDeletePublishesEvent(t *testing.T) {
	bus := event_bus.NewEventBus()
	repo := NewRepositoryStub()
	service := NewService(repo, bus)

	created, err := service.Create(testCtx(), TeamMember{Name: "Alice"})
	require.NoError(t, err)

	var deletedId string
	event_bus.SubscribeTyped(bus, event_bus.TeamMemberDeletedEvent,
		func(e event_bus.EventT[event_bus.TeamMemberDeleted]) error {
			deletedId = e.Data.Id
			return nil
		})

	require.NoError(t, service.Delete(testCtx(), created.Id))
	assert.Equal(t, created.Id, deletedId)
}

func TestMutationSucceedsWhenSubscriberFails(t *testing.T) {
	bus := event_bus.NewEventBus()
	service := NewService(NewRepositoryStub(), bus)

	event_bus.SubscribeTyped(bus, event_bus.TeamMemberCreatedEvent,
		func(e event_bus.EventT[event_bus.TeamMemberCreated]) error {
			return errors.New("sync exploded")
		})

	created, err := service.Create(testCtx(), TeamMember{Name: "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Id)

	found, err := service.Get(testCtx(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)
}

func TestServiceRequiresTenant(t *testing.T) {
	service := NewService(NewRepositoryStub(), event_bus.NewEventBus())

	_, err := service.List(context.Background())
	assert.ErrorIs(t, err, tenant.ErrNoTenant)
}
