package calendar_event

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RepositoryStub is an in-memory Repository for service tests. Unlike the SQL
// implementation it can be seeded with arbitrary rows (including derived-key
// duplicates) to simulate out-of-band edits.
type RepositoryStub struct {
	mu        sync.RWMutex
	items     map[string]Event // uid -> event
	tenantIds map[string]int   // uid -> tenantId
	errMu     sync.Mutex
	failNext  error
	now       func() time.Time
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:     make(map[string]Event),
		tenantIds: make(map[string]int),
		now:       time.Now,
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	originalItems := make(map[string]Event, len(r.items))
	for k, v := range r.items {
		originalItems[k] = v
	}
	originalTenantIds := make(map[string]int, len(r.tenantIds))
	for k, v := range r.tenantIds {
		originalTenantIds[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.items = originalItems
		r.tenantIds = originalTenantIds
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) takeError() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *RepositoryStub) Upsert(ctx context.Context, tenantId int, event Event) (Event, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return Event{}, false, err
	}

	for uid, existing := range r.items {
		if r.tenantIds[uid] == tenantId && existing.Key() == event.Key() {
			return existing, false, nil
		}
	}

	if event.UID == "" {
		event.UID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}
	r.items[event.UID] = event
	r.tenantIds[event.UID] = tenantId
	return event, true, nil
}

func (r *RepositoryStub) GetByKey(ctx context.Context, tenantId int, key DerivedKey) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeError(); err != nil {
		return nil, err
	}

	for uid, event := range r.items {
		if r.tenantIds[uid] == tenantId && event.Key() == key {
			e := event
			return &e, nil
		}
	}
	return nil, nil
}

func (r *RepositoryStub) GetByLinkedEntity(ctx context.Context, tenantId int, entityType EntityType, entityId string) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeError(); err != nil {
		return nil, err
	}

	var result []Event
	for uid, event := range r.items {
		if r.tenantIds[uid] == tenantId && event.LinkedEntityType == entityType && event.LinkedEntityID == entityId {
			result = append(result, event)
		}
	}
	sortByYear(result)
	return result, nil
}

func (r *RepositoryStub) GetByType(ctx context.Context, tenantId int, eventType EventType) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeError(); err != nil {
		return nil, err
	}

	var result []Event
	for uid, event := range r.items {
		if r.tenantIds[uid] == tenantId && event.EventType == eventType {
			result = append(result, event)
		}
	}
	sortByStart(result)
	return result, nil
}

func (r *RepositoryStub) GetAll(ctx context.Context, tenantId int) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeError(); err != nil {
		return nil, err
	}

	var result []Event
	for uid, event := range r.items {
		if r.tenantIds[uid] == tenantId {
			result = append(result, event)
		}
	}
	sortByStart(result)
	return result, nil
}

func (r *RepositoryStub) GetEvents(ctx context.Context, tenantId int, from, to time.Time) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeError(); err != nil {
		return nil, err
	}

	var result []Event
	for uid, event := range r.items {
		if r.tenantIds[uid] == tenantId && !event.StartDate.After(to) && !event.EndDate.Before(from) {
			result = append(result, event)
		}
	}
	sortByStart(result)
	return result, nil
}

func (r *RepositoryStub) UpdateSchedule(ctx context.Context, tenantId int, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	existing, ok := r.items[event.UID]
	if !ok || r.tenantIds[event.UID] != tenantId {
		return fmt.Errorf("no event found with uid %s for tenant %d", event.UID, tenantId)
	}

	existing.Title = event.Title
	existing.StartDate = event.StartDate
	existing.EndDate = event.EndDate
	existing.AllDay = event.AllDay
	existing.Recurrence = event.Recurrence
	existing.TeamMemberID = event.TeamMemberID
	r.items[event.UID] = existing
	return nil
}

func (r *RepositoryStub) UpdateUserFields(ctx context.Context, tenantId int, uid string, title, notes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	existing, ok := r.items[uid]
	if !ok || r.tenantIds[uid] != tenantId {
		return fmt.Errorf("no event found with uid %s for tenant %d", uid, tenantId)
	}
	if title != nil {
		existing.Title = *title
		existing.TitleOverridden = true
	}
	if notes != nil {
		existing.Notes = *notes
	}
	r.items[uid] = existing
	return nil
}

func (r *RepositoryStub) Delete(ctx context.Context, tenantId int, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	if _, ok := r.items[uid]; ok && r.tenantIds[uid] == tenantId {
		delete(r.items, uid)
		delete(r.tenantIds, uid)
	}
	return nil
}

func (r *RepositoryStub) DeleteByLinkedEntity(ctx context.Context, tenantId int, entityType EntityType, entityId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	for uid, event := range r.items {
		if r.tenantIds[uid] == tenantId && event.LinkedEntityType == entityType && event.LinkedEntityID == entityId {
			delete(r.items, uid)
			delete(r.tenantIds, uid)
		}
	}
	return nil
}

func (r *RepositoryStub) DeleteByTeamMember(ctx context.Context, tenantId int, teamMemberId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeError(); err != nil {
		return err
	}

	for uid, event := range r.items {
		if r.tenantIds[uid] == tenantId && event.TeamMemberID == teamMemberId {
			delete(r.items, uid)
			delete(r.tenantIds, uid)
		}
	}
	return nil
}

// SeedEvent inserts an event bypassing derived-key uniqueness, simulating an
// out-of-band write (crashed pass, manual data edit).
func (r *RepositoryStub) SeedEvent(tenantId int, event Event) Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.UID == "" {
		event.UID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}
	r.items[event.UID] = event
	r.tenantIds[event.UID] = tenantId
	return event
}

// FailNext makes the next repository call return err (for partial-failure tests).
func (r *RepositoryStub) FailNext(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.failNext = err
}

// AllEvents returns every stored event regardless of tenant (test assertions).
func (r *RepositoryStub) AllEvents() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0, len(r.items))
	for _, event := range r.items {
		result = append(result, event)
	}
	sortByStart(result)
	return result
}

func sortByStart(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].UID < events[j].UID
		}
		return events[i].StartDate.Before(events[j].StartDate)
	})
}

func sortByYear(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].OccurrenceYear == events[j].OccurrenceYear {
			return events[i].Ordinal < events[j].Ordinal
		}
		return events[i].OccurrenceYear < events[j].OccurrenceYear
	})
}
