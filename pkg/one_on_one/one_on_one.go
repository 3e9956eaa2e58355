package one_on_one

import "time"

// OneOnOne is a recurring-meeting source entity. NextMeetingCalendarEventId
// is a weak back-reference to the derived calendar event: both sides are
// independently mutable and potentially stale, so consumers always re-resolve
// the event through the store instead of trusting the cached link.
type OneOnOne struct {
	Id                         string
	TeamMemberId               string
	NextMeetingDate            *time.Time
	NextMeetingCalendarEventId *string
	CreatedAt                  time.Time
}
