package event_sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kalendra/kalendra/internal/utils"
	"github.com/kalendra/kalendra/pkg/calendar_event"
	"github.com/kalendra/kalendra/pkg/duty_schedule"
	"github.com/kalendra/kalendra/pkg/one_on_one"
	"github.com/kalendra/kalendra/pkg/recurrence"
	"github.com/kalendra/kalendra/pkg/team_member"
	"github.com/kalendra/kalendra/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

var yearlyOnce = recurrence.Descriptor{Type: recurrence.Yearly, Interval: 1}

// PassResult reports the outcome of one synchronization pass. Created,
// Updated and Removed carry the UIDs of the affected events; Errors carries
// one message per source entity that failed, without aborting the pass.
type PassResult struct {
	TotalSynced int      `json:"totalSynced"`
	Created     []string `json:"created"`
	Updated     []string `json:"updated"`
	Removed     []string `json:"removed"`
	Errors      []string `json:"errors"`
}

func newPassResult() PassResult {
	return PassResult{Created: []string{}, Updated: []string{}, Removed: []string{}, Errors: []string{}}
}

// SyncSummary aggregates the three independent passes.
type SyncSummary struct {
	TotalProcessed int        `json:"totalProcessed"`
	BirthdayEvents PassResult `json:"birthdayEvents"`
	OneOnOneEvents PassResult `json:"oneOnOneEvents"`
	DutyEvents     PassResult `json:"dutyEvents"`
	Success        bool       `json:"success"`
	Errors         []string   `json:"errors"`
}

type Service interface {
	SynchronizeAllEvents(ctx context.Context) (SyncSummary, error)
	SyncOneOnOneMeetings(ctx context.Context) (PassResult, error)
	SyncBirthdayEvents(ctx context.Context) (PassResult, error)
	SyncDutySchedules(ctx context.Context) (PassResult, error)
	GenerateEventsForTeamMember(ctx context.Context, memberId string) error
	UpdateEventsForTeamMember(ctx context.Context, memberId string) error
	DeleteEventsForTeamMember(ctx context.Context, memberId string) error
	GenerateBirthdayEventsForYears(ctx context.Context, memberId string, startYear, endYear int) ([]calendar_event.Event, error)
	UpdateBirthdayEventsForTeamMember(ctx context.Context, memberId string, newBirthday *string) error
	DeleteBirthdayEventsForTeamMember(ctx context.Context, memberId string) error
	EnsureBirthdayEventsExist(ctx context.Context, memberIds []string, years []int) error
}

// ServiceImpl keeps derived calendar events consistent with their source
// entities. Every pass re-reads from the store; no state is held across
// invocations, so concurrent passes for the same tenant converge through the
// store's derived-key upsert.
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

func (s *ServiceImpl) yearWindow() (int, int) {
	year := s.clock.Now().UTC().Year()
	return year - s.yearsBack, year + s.yearsAhead
}

// SynchronizeAllEvents runs the three passes. The passes are independent and
// order-independent; a pass-level failure on one does not prevent the others
// from running, but marks the summary unsuccessful.
func (s *ServiceImpl) SynchronizeAllEvents(ctx context.Context) (SyncSummary, error) {
	summary := SyncSummary{Success: true, Errors: []string{}}

	run := func(name string, pass func(context.Context) (PassResult, error)) PassResult {
		result, err := pass(ctx)
		if err != nil {
			summary.Success = false
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s pass: %v", name, err))
			return newPassResult()
		}
		summary.TotalProcessed += result.TotalSynced
		summary.Errors = append(summary.Errors, result.Errors...)
		if len(result.Errors) > 0 {
			summary.Success = false
		}
		return result
	}

	summary.OneOnOneEvents = run("one-on-one", s.SyncOneOnOneMeetings)
	summary.BirthdayEvents = run("birthday", s.SyncBirthdayEvents)
	summary.DutyEvents = run("duty", s.SyncDutySchedules)
	return summary, nil
}

// SyncOneOnOneMeetings upserts one derived event per meeting with a future
// next meeting date and writes the event UID back onto the meeting. Meetings
// whose date was cleared or moved into the past have their stale future event
// removed.
func (s *ServiceImpl) SyncOneOnOneMeetings(ctx context.Context) (PassResult, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return PassResult{}, fmt.Errorf("failed to get current tenant: %w", err)
	}

	meetings, err := s.oneOnOnes.GetAll(ctx, tenantId)
	if err != nil {
		return PassResult{}, fmt.Errorf("could not load one-on-ones: %w", err)
	}

	result := newPassResult()
	today := utils.StartOfDay(s.clock.Now().UTC())
	for _, meeting := range meetings {
		if err := s.syncOneMeeting(ctx, tenantId, meeting, today, &result); err != nil {
			result.Errors = append(result.Errors, entityError("one-on-one", meeting.Id, err))
			continue
		}
		result.TotalSynced++
	}
	return result, nil
}

func (s *ServiceImpl) syncOneMeeting(ctx context.Context, tenantId int, meeting one_on_one.OneOnOne, today time.Time, result *PassResult) error {
	existing, err := s.events.GetByLinkedEntity(ctx, tenantId, calendar_event.EntityOneOnOne, meeting.Id)
	if err != nil {
		return err
	}

	if meeting.NextMeetingDate == nil || meeting.NextMeetingDate.Before(today) {
		if len(existing) == 0 && meeting.NextMeetingCalendarEventId == nil {
			return nil
		}
		if len(existing) > 0 {
			if err := s.events.DeleteByLinkedEntity(ctx, tenantId, calendar_event.EntityOneOnOne, meeting.Id); err != nil {
				return err
			}
			for _, ev := range existing {
				result.Removed = append(result.Removed, ev.UID)
			}
		}
		return s.oneOnOnes.SetNextMeetingEventRef(ctx, tenantId, meeting.Id, nil)
	}

	member, err := s.members.GetById(ctx, tenantId, meeting.TeamMemberId)
	if err != nil {
		return fmt.Errorf("could not resolve team member %s: %w", meeting.TeamMemberId, err)
	}
	expected, err := OneOnOneEvent(member.Name, meeting)
	if err != nil {
		return err
	}

	var linkedUid string
	var created, updated bool
	var stale []string
	err = s.events.WithTransaction(ctx, func(repo calendar_event.Repository) error {
		stored, wasCreated, err := repo.Upsert(ctx, tenantId, expected)
		if err != nil {
			return err
		}
		created = wasCreated
		if !wasCreated && ScheduleDrifted(stored, expected) {
			if err := repo.UpdateSchedule(ctx, tenantId, MergeSchedule(stored, expected)); err != nil {
				return err
			}
			updated = true
		}
		linkedUid = stored.UID

		// A meeting moved to another year leaves an event under the old key.
		for _, ev := range existing {
			if ev.UID == stored.UID {
				continue
			}
			if err := repo.Delete(ctx, tenantId, ev.UID); err != nil {
				return err
			}
			stale = append(stale, ev.UID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if created {
		result.Created = append(result.Created, linkedUid)
	}
	if updated {
		result.Updated = append(result.Updated, linkedUid)
	}
	result.Removed = append(result.Removed, stale...)

	if meeting.NextMeetingCalendarEventId == nil || *meeting.NextMeetingCalendarEventId != linkedUid {
		return s.oneOnOnes.SetNextMeetingEventRef(ctx, tenantId, meeting.Id, &linkedUid)
	}
	return nil
}

// SyncBirthdayEvents upserts one all-day event per covered year for every
// member with a birthday, and prunes events that fell out of the window or
// whose member's birthday was cleared.
func (s *ServiceImpl) SyncBirthdayEvents(ctx context.Context) (PassResult, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return PassResult{}, fmt.Errorf("failed to get current tenant: %w", err)
	}

	members, err := s.members.GetAll(ctx, tenantId)
	if err != nil {
		return PassResult{}, fmt.Errorf("could not load team members: %w", err)
	}

	result := newPassResult()
	startYear, endYear := s.yearWindow()
	for _, member := range members {
		if err := s.syncMemberBirthdays(ctx, tenantId, member, startYear, endYear, &result); err != nil {
			result.Errors = append(result.Errors, entityError("team member", member.Id, err))
			continue
		}
		result.TotalSynced++
	}
	return result, nil
}

func (s *ServiceImpl) syncMemberBirthdays(ctx context.Context, tenantId int, member team_member.TeamMember, startYear, endYear int, result *PassResult) error {
	birthday, err := member.ParseBirthday()
	if err != nil {
		return &ValidationError{EntityType: "team member", EntityId: member.Id, Message: err.Error()}
	}

	existing, err := s.events.GetByLinkedEntity(ctx, tenantId, calendar_event.EntityTeamMember, member.Id)
	if err != nil {
		return err
	}

	if birthday == nil {
		if len(existing) == 0 {
			return nil
		}
		if err := s.events.DeleteByLinkedEntity(ctx, tenantId, calendar_event.EntityTeamMember, member.Id); err != nil {
			return err
		}
		for _, ev := range existing {
			result.Removed = append(result.Removed, ev.UID)
		}
		return nil
	}

	occurrences, err := recurrence.YearlyOccurrences(*birthday, yearlyOnce, startYear, endYear)
	if err != nil {
		return err
	}

	var created, updated, removed []string
	err = s.events.WithTransaction(ctx, func(repo calendar_event.Repository) error {
		created, updated, removed = nil, nil, nil
		keep := make(map[string]bool, len(occurrences))
		for _, occurrence := range occurrences {
			expected := BirthdayEvent(member, occurrence)
			stored, wasCreated, err := repo.Upsert(ctx, tenantId, expected)
			if err != nil {
				return err
			}
			if wasCreated {
				created = append(created, stored.UID)
			} else if ScheduleDrifted(stored, expected) {
				if err := repo.UpdateSchedule(ctx, tenantId, MergeSchedule(stored, expected)); err != nil {
					return err
				}
				updated = append(updated, stored.UID)
			}
			keep[stored.UID] = true
		}
		for _, ev := range existing {
			if keep[ev.UID] {
				continue
			}
			if err := repo.Delete(ctx, tenantId, ev.UID); err != nil {
				return err
			}
			removed = append(removed, ev.UID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	result.Created = append(result.Created, created...)
	result.Updated = append(result.Updated, updated...)
	result.Removed = append(result.Removed, removed...)
	return nil
}

// SyncDutySchedules mirrors every duty schedule into exactly one derived
// event and removes duty events whose schedule no longer exists.
func (s *ServiceImpl) SyncDutySchedules(ctx context.Context) (PassResult, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return PassResult{}, fmt.Errorf("failed to get current tenant: %w", err)
	}

	schedules, err := s.duties.GetAll(ctx, tenantId)
	if err != nil {
		return PassResult{}, fmt.Errorf("could not load duty schedules: %w", err)
	}

	result := newPassResult()
	liveSchedules := make(map[string]bool, len(schedules))
	for _, schedule := range schedules {
		liveSchedules[schedule.Id] = true
		if err := s.syncOneDuty(ctx, tenantId, schedule, &result); err != nil {
			result.Errors = append(result.Errors, entityError("duty schedule", schedule.Id, err))
			continue
		}
		result.TotalSynced++
	}

	dutyEvents, err := s.events.GetByType(ctx, tenantId, calendar_event.EventTypeDuty)
	if err != nil {
		return result, fmt.Errorf("could not load duty events: %w", err)
	}
	for _, ev := range dutyEvents {
		if liveSchedules[ev.LinkedEntityID] {
			continue
		}
		if err := s.events.Delete(ctx, tenantId, ev.UID); err != nil {
			result.Errors = append(result.Errors, entityError("duty event", ev.UID, err))
			continue
		}
		result.Removed = append(result.Removed, ev.UID)
	}
	return result, nil
}

func (s *ServiceImpl) syncOneDuty(ctx context.Context, tenantId int, schedule duty_schedule.DutySchedule, result *PassResult) error {
	member, err := s.members.GetById(ctx, tenantId, schedule.TeamMemberId)
	if err != nil {
		return fmt.Errorf("could not resolve team member %s: %w", schedule.TeamMemberId, err)
	}
	expected := DutyEvent(member.Name, schedule)

	existing, err := s.events.GetByLinkedEntity(ctx, tenantId, calendar_event.EntityDutySchedule, schedule.Id)
	if err != nil {
		return err
	}

	var created, updated bool
	var uid string
	var stale []string
	err = s.events.WithTransaction(ctx, func(repo calendar_event.Repository) error {
		stored, wasCreated, err := repo.Upsert(ctx, tenantId, expected)
		if err != nil {
			return err
		}
		created = wasCreated
		uid = stored.UID
		if !wasCreated && ScheduleDrifted(stored, expected) {
			if err := repo.UpdateSchedule(ctx, tenantId, MergeSchedule(stored, expected)); err != nil {
				return err
			}
			updated = true
		}
		// A schedule moved to another year leaves an event under the old key.
		for _, ev := range existing {
			if ev.UID == stored.UID {
				continue
			}
			if err := repo.Delete(ctx, tenantId, ev.UID); err != nil {
				return err
			}
			stale = append(stale, ev.UID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if created {
		result.Created = append(result.Created, uid)
	}
	if updated {
		result.Updated = append(result.Updated, uid)
	}
	result.Removed = append(result.Removed, stale...)
	return nil
}

// GenerateEventsForTeamMember creates the member's birthday events across the
// configured year window. Called after a team member is created.
func (s *ServiceImpl) GenerateEventsForTeamMember(ctx context.Context, memberId string) error {
	startYear, endYear := s.yearWindow()
	_, err := s.GenerateBirthdayEventsForYears(ctx, memberId, startYear, endYear)
	if errors.As(err, new(*ValidationError)) {
		// Member without a birthday has no derived events to generate.
		log.Debugf("skipping event generation for team member %s: %v", memberId, err)
		return nil
	}
	return err
}

// UpdateEventsForTeamMember regenerates the member's birthday events from the
// current member record. Prior birthday events are deleted in the same
// transaction so a birthday change never leaves events dated by the old
// value.
func (s *ServiceImpl) UpdateEventsForTeamMember(ctx context.Context, memberId string) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}
	member, err := s.members.GetById(ctx, tenantId, memberId)
	if err != nil {
		return fmt.Errorf("could not load team member: %w", err)
	}
	return s.regenerateBirthdayEvents(ctx, tenantId, member)
}

// DeleteEventsForTeamMember removes every derived event referencing the
// member: birthdays, one-on-ones and duties. Called after the member is
// deleted.
func (s *ServiceImpl) DeleteEventsForTeamMember(ctx context.Context, memberId string) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := s.events.DeleteByTeamMember(ctx, tenantId, memberId); err != nil {
		return fmt.Errorf("could not delete events for team member %s: %w", memberId, err)
	}
	return nil
}

// GenerateBirthdayEventsForYears expands the member's birthday across the
// inclusive year range and upserts one event per year. Returns the stored
// events, existing ones included.
func (s *ServiceImpl) GenerateBirthdayEventsForYears(ctx context.Context, memberId string, startYear, endYear int) ([]calendar_event.Event, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	member, err := s.members.GetById(ctx, tenantId, memberId)
	if err != nil {
		return nil, fmt.Errorf("could not load team member: %w", err)
	}
	birthday, err := member.ParseBirthday()
	if err != nil {
		return nil, &ValidationError{EntityType: "team member", EntityId: member.Id, Message: err.Error()}
	}
	if birthday == nil {
		return nil, &ValidationError{EntityType: "team member", EntityId: member.Id, Message: "no birthday set"}
	}

	occurrences, err := recurrence.YearlyOccurrences(*birthday, yearlyOnce, startYear, endYear)
	if err != nil {
		return nil, err
	}

	events := make([]calendar_event.Event, 0, len(occurrences))
	err = s.events.WithTransaction(ctx, func(repo calendar_event.Repository) error {
		events = events[:0]
		for _, occurrence := range occurrences {
			stored, _, err := repo.Upsert(ctx, tenantId, BirthdayEvent(member, occurrence))
			if err != nil {
				return err
			}
			events = append(events, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateBirthdayEventsForTeamMember rebuilds the member's birthday events for
// the given birthday value. A nil birthday removes them all.
func (s *ServiceImpl) UpdateBirthdayEventsForTeamMember(ctx context.Context, memberId string, newBirthday *string) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}
	member, err := s.members.GetById(ctx, tenantId, memberId)
	if err != nil {
		return fmt.Errorf("could not load team member: %w", err)
	}
	member.Birthday = newBirthday
	return s.regenerateBirthdayEvents(ctx, tenantId, member)
}

// DeleteBirthdayEventsForTeamMember removes the member's birthday events,
// leaving one-on-one and duty events untouched.
func (s *ServiceImpl) DeleteBirthdayEventsForTeamMember(ctx context.Context, memberId string) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := s.events.DeleteByLinkedEntity(ctx, tenantId, calendar_event.EntityTeamMember, memberId); err != nil {
		return fmt.Errorf("could not delete birthday events for team member %s: %w", memberId, err)
	}
	return nil
}

// EnsureBirthdayEventsExist creates any missing birthday event for the given
// members and years without touching existing ones. Members that fail are
// skipped; their errors are joined into the returned error.
func (s *ServiceImpl) EnsureBirthdayEventsExist(ctx context.Context, memberIds []string, years []int) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}

	var failures []error
	for _, memberId := range memberIds {
		if err := s.ensureMemberBirthdayEvents(ctx, tenantId, memberId, years); err != nil {
			failures = append(failures, fmt.Errorf("team member %s: %w", memberId, err))
		}
	}
	return errors.Join(failures...)
}

func (s *ServiceImpl) ensureMemberBirthdayEvents(ctx context.Context, tenantId int, memberId string, years []int) error {
	member, err := s.members.GetById(ctx, tenantId, memberId)
	if err != nil {
		return err
	}
	birthday, err := member.ParseBirthday()
	if err != nil {
		return &ValidationError{EntityType: "team member", EntityId: member.Id, Message: err.Error()}
	}
	if birthday == nil {
		return nil
	}

	for _, year := range years {
		key := calendar_event.DerivedKey{EntityType: calendar_event.EntityTeamMember, EntityID: memberId, Year: year}
		existing, err := s.events.GetByKey(ctx, tenantId, key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		occurrences, err := recurrence.YearlyOccurrences(*birthday, yearlyOnce, year, year)
		if err != nil {
			return err
		}
		if _, _, err := s.events.Upsert(ctx, tenantId, BirthdayEvent(member, occurrences[0])); err != nil {
			return err
		}
	}
	return nil
}

// regenerateBirthdayEvents deletes the member's birthday events and rebuilds
// them from the member's current birthday within one transaction.
func (s *ServiceImpl) regenerateBirthdayEvents(ctx context.Context, tenantId int, member team_member.TeamMember) error {
	birthday, err := member.ParseBirthday()
	if err != nil {
		return &ValidationError{EntityType: "team member", EntityId: member.Id, Message: err.Error()}
	}

	startYear, endYear := s.yearWindow()
	return s.events.WithTransaction(ctx, func(repo calendar_event.Repository) error {
		if err := repo.DeleteByLinkedEntity(ctx, tenantId, calendar_event.EntityTeamMember, member.Id); err != nil {
			return err
		}
		if birthday == nil {
			return nil
		}
		occurrences, err := recurrence.YearlyOccurrences(*birthday, yearlyOnce, startYear, endYear)
		if err != nil {
			return err
		}
		for _, occurrence := range occurrences {
			if _, _, err := repo.Upsert(ctx, tenantId, BirthdayEvent(member, occurrence)); err != nil {
				return err
			}
		}
		return nil
	})
}
