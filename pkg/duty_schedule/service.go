package duty_schedule

import (
	"context"
	"fmt"

	"github.com/kalendra/kalendra/internal/event_bus"
	"github.com/kalendra/kalendra/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context) ([]DutySchedule, error)
	Get(ctx context.Context, id string) (DutySchedule, error)
	Create(ctx context.Context, schedule DutySchedule) (DutySchedule, error)
	Update(ctx context.Context, schedule DutySchedule) (DutySchedule, error)
	Delete(ctx context.Context, id string) error
}

type ServiceImpl struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]DutySchedule, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetAll(ctx, tenantId)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (DutySchedule, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return DutySchedule{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetById(ctx, tenantId, id)
}

func (s *ServiceImpl) Create(ctx context.Context, schedule DutySchedule) (DutySchedule, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return DutySchedule{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if schedule.EndDate.Before(schedule.StartDate) {
		return DutySchedule{}, fmt.Errorf("duty schedule ends before it starts")
	}

	created, err := s.repo.Create(ctx, tenantId, schedule)
	if err != nil {
		return DutySchedule{}, fmt.Errorf("failed to create duty schedule: %w", err)
	}

	s.publishChanged(ctx, created.Id)
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, schedule DutySchedule) (DutySchedule, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return DutySchedule{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if schedule.EndDate.Before(schedule.StartDate) {
		return DutySchedule{}, fmt.Errorf("duty schedule ends before it starts")
	}

	if err := s.repo.Update(ctx, tenantId, schedule); err != nil {
		return DutySchedule{}, fmt.Errorf("failed to update duty schedule: %w", err)
	}

	s.publishChanged(ctx, schedule.Id)
	return schedule, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := s.repo.Delete(ctx, tenantId, id); err != nil {
		return fmt.Errorf("failed to delete duty schedule: %w", err)
	}

	s.publishChanged(ctx, id)
	return nil
}

func (s *ServiceImpl) publishChanged(ctx context.Context, id string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.DutyScheduleChangedEvent, event_bus.DutyScheduleChanged{Id: id}))
	if err != nil {
		log.Errorf("post-mutation sync failed for duty schedule %s: %v", id, err)
	}
}
