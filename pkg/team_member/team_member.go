package team_member

import "time"

// BirthdayLayout is the wire and storage format for birthdays. Only the
// month/day matter for derived events; the year records the birth year.
const BirthdayLayout = "2006-01-02"

type TeamMember struct {
	Id   string
	Name string
	// Birthday is the raw "YYYY-MM-DD" value, nil when not set. Parsing is
	// deferred to synchronization so that a malformed value is reported as a
	// per-entity validation failure instead of poisoning reads.
	Birthday  *string
	CreatedAt time.Time
}

// ParseBirthday returns the member's birthday as a date, or nil when unset.
func (m TeamMember) ParseBirthday() (*time.Time, error) {
	if m.Birthday == nil || *m.Birthday == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(BirthdayLayout, *m.Birthday, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
