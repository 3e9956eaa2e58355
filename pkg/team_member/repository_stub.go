package team_member

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu        sync.RWMutex
	items     map[string]TeamMember
	tenantIds map[string]int
	failNext  error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:     make(map[string]TeamMember),
		tenantIds: make(map[string]int),
	}
}

func (r *RepositoryStub) takeError() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *RepositoryStub) GetAll(ctx context.Context, tenantId int) ([]TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return nil, err
	}

	var result []TeamMember
	for id, member := range r.items {
		if r.tenantIds[id] == tenantId {
			result = append(result, member)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *RepositoryStub) GetById(ctx context.Context, tenantId int, id string) (TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return TeamMember{}, err
	}

	member, ok := r.items[id]
	if !ok || r.tenantIds[id] != tenantId {
		return TeamMember{}, ErrTeamMemberNotFound
	}
	return member, nil
}

func (r *RepositoryStub) Create(ctx context.Context, tenantId int, member TeamMember) (TeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return TeamMember{}, err
	}

	if member.Id == "" {
		member.Id = uuid.New().String()
	}
	member.CreatedAt = time.Now()
	r.items[member.Id] = member
	r.tenantIds[member.Id] = tenantId
	return member, nil
}

func (r *RepositoryStub) Update(ctx context.Context, tenantId int, member TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	if _, ok := r.items[member.Id]; !ok || r.tenantIds[member.Id] != tenantId {
		return ErrTeamMemberNotFound
	}
	existing := r.items[member.Id]
	existing.Name = member.Name
	existing.Birthday = member.Birthday
	r.items[member.Id] = existing
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
