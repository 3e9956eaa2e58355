package team_member

import (
	"context"
	"fmt"

	"github.com/kalendra/kalendra/internal/event_bus"
	"github.com/kalendra/kalendra/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context) ([]TeamMember, error)
	Get(ctx context.Context, id string) (TeamMember, error)
	Create(ctx context.Context, member TeamMember) (TeamMember, error)
	Update(ctx context.Context, member TeamMember) (TeamMember, error)
	Delete(ctx context.Context, id string) error
}

type ServiceImpl struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]TeamMember, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetAll(ctx, tenantId)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (TeamMember, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return TeamMember{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetById(ctx, tenantId, id)
}

func (s *ServiceImpl) Create(ctx context.Context, member TeamMember) (TeamMember, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return TeamMember{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if _, err := member.ParseBirthday(); err != nil {
		return TeamMember{}, fmt.Errorf("invalid birthday %q: %w", *member.Birthday, err)
	}

	created, err := s.repo.Create(ctx, tenantId, member)
	if err != nil {
		return TeamMember{}, fmt.Errorf("failed to create team member: %w", err)
	}

	s.publish(ctx, event_bus.TeamMemberCreatedEvent, event_bus.TeamMemberCreated{
		Id:       created.Id,
		Name:     created.Name,
		Birthday: created.Birthday,
	})
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, member TeamMember) (TeamMember, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return TeamMember{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if _, err := member.ParseBirthday(); err != nil {
		return TeamMember{}, fmt.Errorf("invalid birthday %q: %w", *member.Birthday, err)
	}

	if err := s.repo.Update(ctx, tenantId, member); err != nil {
		return TeamMember{}, fmt.Errorf("failed to update team member: %w", err)
	}

	s.publish(ctx, event_bus.TeamMemberUpdatedEvent, event_bus.TeamMemberUpdated{
		Id:       member.Id,
		Name:     member.Name,
		Birthday: member.Birthday,
	})
	return member, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := s.repo.Delete(ctx, tenantId, id); err != nil {
		return fmt.Errorf("failed to delete team member: %w", err)
	}

	s.publish(ctx, event_bus.TeamMemberDeletedEvent, event_bus.TeamMemberDeleted{Id: id})
	return nil
}

// publish triggers the derived-event sync subscribers. A sync failure must not
// fail the mutation itself; the calendar repairs on the next pass.
func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Errorf("post-mutation sync failed for %s: %v", eventType, err)
	}
}
