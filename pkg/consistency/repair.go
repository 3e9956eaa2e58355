package consistency

import (
	"context"
	"fmt"

	"github.com/kalendra/kalendra/internal/utils"
	"github.com/kalendra/kalendra/pkg/calendar_event"
	"github.com/kalendra/kalendra/pkg/event_sync"
	"github.com/kalendra/kalendra/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

// RepairMissingEvents runs a validation scan and corrects every reported
// inconsistency: missing events are regenerated, orphans and surplus
// duplicates are deleted, drifted events get their scheduling fields rewritten
// with user-entered fields preserved. Failures on individual inconsistencies
// are collected; the repair never aborts as a whole.
func (s *ServiceImpl) RepairMissingEvents(ctx context.Context) (RepairResult, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return RepairResult{}, fmt.Errorf("failed to get current tenant: %w", err)
	}

	report, err := s.ValidateEventConsistency(ctx)
	if err != nil {
		return RepairResult{}, fmt.Errorf("could not validate before repair: %w", err)
	}

	result := RepairResult{Errors: []string{}}
	for _, inc := range report.Inconsistencies {
		if err := s.repairOne(ctx, tenantId, inc, &result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", inc.Type, inc.Key, err))
		}
	}
	if len(result.Errors) > 0 {
		log.Warnf("repair finished with %d failures", len(result.Errors))
	}
	return result, nil
}

func (s *ServiceImpl) repairOne(ctx context.Context, tenantId int, inc Inconsistency, result *RepairResult) error {
	switch inc.Type {
	case Missing:
		if _, _, err := s.events.Upsert(ctx, tenantId, *inc.Expected); err != nil {
			return err
		}
		result.Repaired++
	case Drifted:
		if err := s.events.UpdateSchedule(ctx, tenantId, *inc.Expected); err != nil {
			return err
		}
		result.Repaired++
	case Orphaned, Duplicate:
		if err := s.events.Delete(ctx, tenantId, inc.EventUID); err != nil {
			return err
		}
		result.Removed++
	default:
		return fmt.Errorf("unknown inconsistency type %q", inc.Type)
	}
	return nil
}

// EnsureOneOnOneVisibility guarantees that every upcoming one-on-one has
// exactly one derived event, without the cost of a full validation pass. It
// is safe to call on every calendar-page load.
func (s *ServiceImpl) EnsureOneOnOneVisibility(ctx context.Context) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}

	meetings, err := s.oneOnOnes.GetAll(ctx, tenantId)
	if err != nil {
		return fmt.Errorf("could not load one-on-ones: %w", err)
	}

	today := utils.StartOfDay(s.clock.Now().UTC())
	for _, meeting := range meetings {
		if meeting.NextMeetingDate == nil || meeting.NextMeetingDate.Before(today) {
			continue
		}

		existing, err := s.events.GetByLinkedEntity(ctx, tenantId, calendar_event.EntityOneOnOne, meeting.Id)
		if err != nil {
			return err
		}
		if len(existing) == 1 {
			continue
		}

		member, err := s.members.GetById(ctx, tenantId, meeting.TeamMemberId)
		if err != nil {
			log.Errorf("could not resolve team member %s for one-on-one %s: %v", meeting.TeamMemberId, meeting.Id, err)
			continue
		}
		draft, err := event_sync.OneOnOneEvent(member.Name, meeting)
		if err != nil {
			continue
		}

		var linkedUid string
		err = s.events.WithTransaction(ctx, func(repo calendar_event.Repository) error {
			stored, _, err := repo.Upsert(ctx, tenantId, draft)
			if err != nil {
				return err
			}
			linkedUid = stored.UID
			for _, ev := range existing {
				if ev.UID == stored.UID {
					continue
				}
				if err := repo.Delete(ctx, tenantId, ev.UID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		if meeting.NextMeetingCalendarEventId == nil || *meeting.NextMeetingCalendarEventId != linkedUid {
			if err := s.oneOnOnes.SetNextMeetingEventRef(ctx, tenantId, meeting.Id, &linkedUid); err != nil {
				return err
			}
		}
	}
	return nil
}
