package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Type tags a recurrence descriptor. The set is deliberately closed; add
// variants here when a concrete need arises instead of generalizing to a full
// recurrence grammar.
type Type string

const Yearly Type = "yearly"

// Descriptor is the small tagged variant describing how a source entity
// recurs. Only {Yearly, 1} is produced by the synchronization engine today.
type Descriptor struct {
	Type     Type
	Interval int
}

var ErrUnsupportedRecurrence = fmt.Errorf("unsupported recurrence descriptor")

// YearlyOccurrences expands an anchor date into one concrete occurrence per
// interval-spaced year in the inclusive range [startYear, endYear], each
// sharing the anchor's month and day. The function is pure and deterministic.
//
// Feb 29 policy: an anchor of Feb 29 keeps Feb 29 in leap years and shifts to
// Feb 28 in non-leap years, so every covered year yields exactly one
// occurrence.
func YearlyOccurrences(anchor time.Time, d Descriptor, startYear, endYear int) ([]time.Time, error) {
	if d.Type != Yearly {
		return nil, fmt.Errorf("%w: type %q", ErrUnsupportedRecurrence, d.Type)
	}
	if d.Interval < 1 {
		return nil, fmt.Errorf("%w: interval %d", ErrUnsupportedRecurrence, d.Interval)
	}
	if endYear < startYear {
		return nil, fmt.Errorf("invalid year range [%d, %d]", startYear, endYear)
	}

	month, day := anchor.Month(), anchor.Day()
	feb29 := month == time.February && day == 29
	ruleDay := day
	if feb29 {
		// Feb 28 exists in every year; leap years are bumped back below.
		ruleDay = 28
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.YEARLY,
		Interval: d.Interval,
		Dtstart:  time.Date(startYear, month, ruleDay, 0, 0, 0, 0, time.UTC),
		Until:    time.Date(endYear, 12, 31, 23, 59, 59, 0, time.UTC),
	})
	if err != nil {
		return nil, fmt.Errorf("could not build recurrence rule: %w", err)
	}

	occurrences := rule.All()
	if feb29 {
		for i, occ := range occurrences {
			if isLeapYear(occ.Year()) {
				occurrences[i] = occ.AddDate(0, 0, 1)
			}
		}
	}
	return occurrences, nil
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
