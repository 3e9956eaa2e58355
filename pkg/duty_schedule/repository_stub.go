package duty_schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu        sync.Mutex
	items     map[string]DutySchedule
	tenantIds map[string]int
	failNext  error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:     make(map[string]DutySchedule),
		tenantIds: make(map[string]int),
	}
}

func (r *RepositoryStub) takeError() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *RepositoryStub) GetAll(ctx context.Context, tenantId int) ([]DutySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return nil, err
	}

	var result []DutySchedule
	for id, schedule := range r.items {
		if r.tenantIds[id] == tenantId {
			result = append(result, schedule)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (r *RepositoryStub) GetById(ctx context.Context, tenantId int, id string) (DutySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return DutySchedule{}, err
	}

	schedule, ok := r.items[id]
	if !ok || r.tenantIds[id] != tenantId {
		return DutySchedule{}, ErrDutyScheduleNotFound
	}
	return schedule, nil
}

func (r *RepositoryStub) Create(ctx context.Context, tenantId int, schedule DutySchedule) (DutySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return DutySchedule{}, err
	}

	if schedule.Id == "" {
		schedule.Id = uuid.New().String()
	}
	schedule.CreatedAt = time.Now()
	r.items[schedule.Id] = schedule
	r.tenantIds[schedule.Id] = tenantId
	return schedule, nil
}

func (r *RepositoryStub) Update(ctx context.Context, tenantId int, schedule DutySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	existing, ok := r.items[schedule.Id]
	if !ok || r.tenantIds[schedule.Id] != tenantId {
		return ErrDutyScheduleNotFound
	}
	existing.TeamMemberId = schedule.TeamMemberId
	existing.DutyType = schedule.DutyType
	existing.StartDate = schedule.StartDate
	existing.EndDate = schedule.EndDate
	r.items[schedule.Id] = existing
	return nil
}

func (r *RepositoryStub) Delete(ctx context.Context, tenantId int, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	delete(r.items, id)
	delete(r.tenantIds, id)
	return nil
}

// FailNext makes the next repository call return err.
func (r *RepositoryStub) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}
