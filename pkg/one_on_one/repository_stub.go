package one_on_one

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu        sync.Mutex
	items     map[string]OneOnOne
	tenantIds map[string]int
	failNext  error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:     make(map[string]OneOnOne),
		tenantIds: make(map[string]int),
	}
}

func (r *RepositoryStub) takeError() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *RepositoryStub) GetAll(ctx context.Context, tenantId int) ([]OneOnOne, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return nil, err
	}

	var result []OneOnOne
	for id, oneOnOne := range r.items {
		if r.tenantIds[id] == tenantId {
			result = append(result, oneOnOne)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (r *RepositoryStub) GetById(ctx context.Context, tenantId int, id string) (OneOnOne, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return OneOnOne{}, err
	}

	oneOnOne, ok := r.items[id]
	if !ok || r.tenantIds[id] != tenantId {
		return OneOnOne{}, ErrOneOnOneNotFound
	}
	return oneOnOne, nil
}

func (r *RepositoryStub) Create(ctx context.Context, tenantId int, oneOnOne OneOnOne) (OneOnOne, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return OneOnOne{}, err
	}

	if oneOnOne.Id == "" {
		oneOnOne.Id = uuid.New().String()
	}
	oneOnOne.CreatedAt = time.Now()
	r.items[oneOnOne.Id] = oneOnOne
	r.tenantIds[oneOnOne.Id] = tenantId
	return oneOnOne, nil
}

func (r *RepositoryStub) Update(ctx context.Context, tenantId int, oneOnOne OneOnOne) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	existing, ok := r.items[oneOnOne.Id]
	if !ok || r.tenantIds[oneOnOne.Id] != tenantId {
		return ErrOneOnOneNotFound
	}
	existing.TeamMemberId = oneOnOne.TeamMemberId
	existing.NextMeetingDate = oneOnOne.NextMeetingDate
	r.items[oneOnOne.Id] = existing
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

func (r *RepositoryStub) SetNextMeetingEventRef(ctx context.Context, tenantId int, id string, eventUid *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	existing, ok := r.items[id]
	if !ok || r.tenantIds[id] != tenantId {
		return ErrOneOnOneNotFound
	}
	existing.NextMeetingCalendarEventId = eventUid
	r.items[id] = existing
	return nil
}

// FailNext makes the next repository call return err.
func (r *RepositoryStub) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}
