package consistency

import (
	"context"
	"fmt"
	"sort"

	"github.com/kalendra/kalendra/internal/utils"
	"github.com/kalendra/kalendra/pkg/calendar_event"
	"github.com/kalendra/kalendra/pkg/duty_schedule"
	"github.com/kalendra/kalendra/pkg/event_sync"
	"github.com/kalendra/kalendra/pkg/one_on_one"
	"github.com/kalendra/kalendra/pkg/recurrence"
	"github.com/kalendra/kalendra/pkg/team_member"
	"github.com/kalendra/kalendra/pkg/tenant"
)

type Service interface {
	ValidateEventConsistency(ctx context.Context) (ValidationReport, error)
	RepairMissingEvents(ctx context.Context) (RepairResult, error)
	EnsureOneOnOneVisibility(ctx context.Context) error
}

// ServiceImpl detects and corrects derived-event states that bypassed the
// normal synchronization path: a crashed pass, a manual data edit, a lost
// write. Validation is strictly read-only; only the repair operations mutate.
type ServiceImpl struct {
	events     calendar_event.Repository
	members    team_member.Repository
	oneOnOnes  one_on_one.Repository
	duties     duty_schedule.Repository
	clock      utils.Clock
	yearsBack  int
	yearsAhead int
}

func NewService(
	events calendar_event.Repository,
	members team_member.Repository,
	oneOnOnes one_on_one.Repository,
	duties duty_schedule.Repository,
	clock utils.Clock,
	yearsBack, yearsAhead int,
) *ServiceImpl {
	return &ServiceImpl{
		events:     events,
		members:    members,
		oneOnOnes:  oneOnOnes,
		duties:     duties,
		clock:      clock,
		yearsBack:  yearsBack,
		yearsAhead: yearsAhead,
	}
}

// expectation is one derived event a source entity currently implies.
type expectation struct {
	draft calendar_event.Event
}

// ValidateEventConsistency compares every derived event against what the
// source entities currently imply and classifies each discrepancy. It never
// mutates the store.
func (s *ServiceImpl) ValidateEventConsistency(ctx context.Context) (ValidationReport, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return ValidationReport{}, fmt.Errorf("failed to get current tenant: %w", err)
	}

	report := ValidationReport{Inconsistencies: []Inconsistency{}, Errors: []string{}}

	expected, skipEntities, err := s.expectedEvents(ctx, tenantId, &report)
	if err != nil {
		return ValidationReport{}, err
	}

	events, err := s.events.GetAll(ctx, tenantId)
	if err != nil {
		return ValidationReport{}, fmt.Errorf("could not load calendar events: %w", err)
	}

	stored := make(map[calendar_event.DerivedKey][]calendar_event.Event)
	for _, ev := range events {
		if !ev.Derived() {
			continue
		}
		if skipEntities[entityRef{ev.LinkedEntityType, ev.LinkedEntityID}] {
			continue
		}
		report.TotalEventsValidated++
		key := normalizedKey(ev)
		stored[key] = append(stored[key], ev)
	}

	for key, group := range stored {
		exp, implied := expected[key]
		if !implied {
			for _, ev := range group {
				report.Inconsistencies = append(report.Inconsistencies, Inconsistency{
					Type:     Orphaned,
					EventUID: ev.UID,
					Key:      key.String(),
					Detail:   fmt.Sprintf("no %s implies this event anymore", key.EntityType),
				})
			}
			continue
		}

		canonical := earliestCreated(group)
		for _, ev := range group {
			if ev.UID == canonical.UID {
				continue
			}
			report.Inconsistencies = append(report.Inconsistencies, Inconsistency{
				Type:     Duplicate,
				EventUID: ev.UID,
				Key:      key.String(),
				Detail:   fmt.Sprintf("duplicate of %s", canonical.UID),
			})
		}

		if event_sync.ScheduleDrifted(canonical, exp.draft) {
			merged := event_sync.MergeSchedule(canonical, exp.draft)
			report.Inconsistencies = append(report.Inconsistencies, Inconsistency{
				Type:     Drifted,
				EventUID: canonical.UID,
				Key:      key.String(),
				Detail:   "scheduling fields no longer match the source entity",
				Expected: &merged,
			})
		}
	}

	for key, exp := range expected {
		if _, ok := stored[key]; ok {
			continue
		}
		draft := exp.draft
		report.Inconsistencies = append(report.Inconsistencies, Inconsistency{
			Type:     Missing,
			Key:      key.String(),
			Detail:   fmt.Sprintf("%s %s implies an event for %d", key.EntityType, key.EntityID, key.Year),
			Expected: &draft,
		})
	}

	sort.Slice(report.Inconsistencies, func(i, j int) bool {
		a, b := report.Inconsistencies[i], report.Inconsistencies[j]
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.EventUID < b.EventUID
	})
	report.InconsistenciesFound = len(report.Inconsistencies)
	report.IsValid = report.InconsistenciesFound == 0
	return report, nil
}

type entityRef struct {
	entityType calendar_event.EntityType
	entityId   string
}

// expectedEvents builds the full set of derived events the source entities
// currently imply, keyed by derived key. Entities that cannot be interpreted
// (malformed birthday) are recorded in the report and returned in the skip
// set so their stored events are not misclassified.
func (s *ServiceImpl) expectedEvents(ctx context.Context, tenantId int, report *ValidationReport) (map[calendar_event.DerivedKey]expectation, map[entityRef]bool, error) {
	expected := make(map[calendar_event.DerivedKey]expectation)
	skip := make(map[entityRef]bool)

	members, err := s.members.GetAll(ctx, tenantId)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load team members: %w", err)
	}
	membersById := make(map[string]team_member.TeamMember, len(members))
	year := s.clock.Now().UTC().Year()
	startYear, endYear := year-s.yearsBack, year+s.yearsAhead
	for _, member := range members {
		membersById[member.Id] = member
		birthday, err := member.ParseBirthday()
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("team member %s: %v", member.Id, err))
			skip[entityRef{calendar_event.EntityTeamMember, member.Id}] = true
			continue
		}
		if birthday == nil {
			continue
		}
		occurrences, err := recurrence.YearlyOccurrences(*birthday,
			recurrence.Descriptor{Type: recurrence.Yearly, Interval: 1}, startYear, endYear)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("team member %s: %v", member.Id, err))
			skip[entityRef{calendar_event.EntityTeamMember, member.Id}] = true
			continue
		}
		for _, occurrence := range occurrences {
			draft := event_sync.BirthdayEvent(member, occurrence)
			expected[draft.Key()] = expectation{draft: draft}
		}
	}

	meetings, err := s.oneOnOnes.GetAll(ctx, tenantId)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load one-on-ones: %w", err)
	}
	today := utils.StartOfDay(s.clock.Now().UTC())
	for _, meeting := range meetings {
		if meeting.NextMeetingDate == nil || meeting.NextMeetingDate.Before(today) {
			continue
		}
		member, ok := membersById[meeting.TeamMemberId]
		if !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("one-on-one %s: team member %s not found", meeting.Id, meeting.TeamMemberId))
			skip[entityRef{calendar_event.EntityOneOnOne, meeting.Id}] = true
			continue
		}
		draft, err := event_sync.OneOnOneEvent(member.Name, meeting)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("one-on-one %s: %v", meeting.Id, err))
			skip[entityRef{calendar_event.EntityOneOnOne, meeting.Id}] = true
			continue
		}
		expected[draft.Key()] = expectation{draft: draft}
	}

	schedules, err := s.duties.GetAll(ctx, tenantId)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load duty schedules: %w", err)
	}
	for _, schedule := range schedules {
		member, ok := membersById[schedule.TeamMemberId]
		if !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("duty schedule %s: team member %s not found", schedule.Id, schedule.TeamMemberId))
			skip[entityRef{calendar_event.EntityDutySchedule, schedule.Id}] = true
			continue
		}
		draft := event_sync.DutyEvent(member.Name, schedule)
		expected[draft.Key()] = expectation{draft: draft}
	}

	return expected, skip, nil
}

// normalizedKey folds the ordinal to zero for event types whose synthesis
// only ever produces a single occurrence per entity and year, so an
// out-of-band copy seeded under a different ordinal is still caught as a
// duplicate.
func normalizedKey(ev calendar_event.Event) calendar_event.DerivedKey {
	key := ev.Key()
	if ev.EventType != calendar_event.EventTypeDuty {
		key.Ordinal = 0
	}
	return key
}

func earliestCreated(group []calendar_event.Event) calendar_event.Event {
	canonical := group[0]
	for _, ev := range group[1:] {
		if ev.CreatedAt.Before(canonical.CreatedAt) ||
			(ev.CreatedAt.Equal(canonical.CreatedAt) && ev.UID < canonical.UID) {
			canonical = ev
		}
	}
	return canonical
}
