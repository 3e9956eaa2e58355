package event_sync

import "fmt"

// ValidationError marks a malformed source entity, e.g. an unparseable
// birthday. It is recorded in the pass result for the offending entity and
// never aborts the pass.
type ValidationError struct {
	EntityType string
	EntityId   string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %s: %s", e.EntityType, e.EntityId, e.Message)
}

func entityError(entityType, entityId string, err error) string {
	return fmt.Sprintf("%s %s: %v", entityType, entityId, err)
}
