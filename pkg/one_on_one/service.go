package one_on_one

import (
	"context"
	"fmt"

	"github.com/kalendra/kalendra/internal/event_bus"
	"github.com/kalendra/kalendra/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context) ([]OneOnOne, error)
	Get(ctx context.Context, id string) (OneOnOne, error)
	Create(ctx context.Context, oneOnOne OneOnOne) (OneOnOne, error)
	Update(ctx context.Context, oneOnOne OneOnOne) (OneOnOne, error)
	Delete(ctx context.Context, id string) error
}

type ServiceImpl struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]OneOnOne, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetAll(ctx, tenantId)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (OneOnOne, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return OneOnOne{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetById(ctx, tenantId, id)
}

func (s *ServiceImpl) Create(ctx context.Context, oneOnOne OneOnOne) (OneOnOne, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return OneOnOne{}, fmt.Errorf("failed to get current tenant: %w", err)
	}

	created, err := s.repo.Create(ctx, tenantId, oneOnOne)
	if err != nil {
		return OneOnOne{}, fmt.Errorf("failed to create one-on-one: %w", err)
	}

	s.publishChanged(ctx, created)
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, oneOnOne OneOnOne) (OneOnOne, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return OneOnOne{}, fmt.Errorf("failed to get current tenant: %w", err)
	}

	if err := s.repo.Update(ctx, tenantId, oneOnOne); err != nil {
		return OneOnOne{}, fmt.Errorf("failed to update one-on-one: %w", err)
	}

	s.publishChanged(ctx, oneOnOne)
	return oneOnOne, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := s.repo.Delete(ctx, tenantId, id); err != nil {
		return fmt.Errorf("failed to delete one-on-one: %w", err)
	}

	s.publishChanged(ctx, OneOnOne{Id: id})
	return nil
}

func (s *ServiceImpl) publishChanged(ctx context.Context, oneOnOne OneOnOne) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.OneOnOneChangedEvent, event_bus.OneOnOneChanged{
		Id:              oneOnOne.Id,
		TeamMemberId:    oneOnOne.TeamMemberId,
		NextMeetingDate: oneOnOne.NextMeetingDate,
	}))
	if err != nil {
		log.Errorf("post-mutation sync failed for one-on-one %s: %v", oneOnOne.Id, err)
	}
}
