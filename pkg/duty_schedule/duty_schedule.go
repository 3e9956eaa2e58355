package duty_schedule

import "time"

// DutySchedule is a duty-rotation source entity. Exactly one derived calendar
// event mirrors each schedule's bounds.
type DutySchedule struct {
	Id           string
	TeamMemberId string
	DutyType     string
	StartDate    time.Time
	EndDate      time.Time
	CreatedAt    time.Time
}
