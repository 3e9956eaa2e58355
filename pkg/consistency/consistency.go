package consistency

import "github.com/kalendra/kalendra/pkg/calendar_event"

// InconsistencyType classifies a discrepancy between a derived event and its
// source entity.
type InconsistencyType string

const (
	// Missing means a source entity implies an event that does not exist.
	Missing InconsistencyType = "missing"
	// Orphaned means an event exists but nothing implies it anymore: the
	// source entity is gone, or it no longer produces this occurrence
	// (cleared birthday, out-of-window year, meeting moved to the past).
	Orphaned InconsistencyType = "orphaned"
	// Duplicate means more than one event shares the same derived key. One
	// inconsistency is reported per surplus copy; the earliest-created record
	// is the canonical one.
	Duplicate InconsistencyType = "duplicate"
	// Drifted means an existing event's scheduling fields no longer match
	// what synthesis would currently produce.
	Drifted InconsistencyType = "drifted"
)

// Inconsistency describes one discrepancy. Expected carries the record the
// repair service should write: the full draft for a missing event, the merged
// record (user edits preserved) for a drifted one.
type Inconsistency struct {
	Type     InconsistencyType     `json:"type"`
	EventUID string                `json:"eventUid,omitempty"`
	Key      string                `json:"key"`
	Detail   string                `json:"detail"`
	Expected *calendar_event.Event `json:"-"`
}

// ValidationReport is the read-only result of a consistency scan.
type ValidationReport struct {
	TotalEventsValidated int             `json:"totalEventsValidated"`
	InconsistenciesFound int             `json:"inconsistenciesFound"`
	Inconsistencies      []Inconsistency `json:"inconsistencies"`
	IsValid              bool            `json:"isValid"`
	// Errors lists source entities that could not be validated at all,
	// e.g. a member with an unparseable birthday. Their events are left
	// unclassified rather than misreported as orphans.
	Errors []string `json:"errors"`
}

// RepairResult reports what the repair service changed.
type RepairResult struct {
	Repaired int      `json:"repaired"`
	Removed  int      `json:"removed"`
	Errors   []string `json:"errors"`
}
