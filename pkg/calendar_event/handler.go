package calendar_event

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kalendra/kalendra/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

// Handler serves the calendar page. Loading events first runs a full
// synchronization plus the one-on-one visibility guarantee; both are injected
// as plain funcs so this package stays free of a dependency on the engine.
type Handler struct {
	repo             Repository
	synchronize      func(ctx context.Context) error
	ensureVisibility func(ctx context.Context) error
}

type EventDTO struct {
	UID              string      `json:"uid"`
	Title            string      `json:"title"`
	StartDate        time.Time   `json:"startDate"`
	EndDate          time.Time   `json:"endDate"`
	EventType        string      `json:"eventType"`
	AllDay           bool        `json:"allDay"`
	Recurrence       *Recurrence `json:"recurrence,omitempty"`
	TeamMemberId     string      `json:"teamMemberId,omitempty"`
	LinkedEntityType string      `json:"linkedEntityType,omitempty"`
	LinkedEntityId   string      `json:"linkedEntityId,omitempty"`
	Notes            string      `json:"notes,omitempty"`
}

func NewHandler(repo Repository, synchronize, ensureVisibility func(ctx context.Context) error) *Handler {
	return &Handler{repo: repo, synchronize: synchronize, ensureVisibility: ensureVisibility}
}

// GetEvents returns all events overlapping the requested range. The calendar
// renders the best available derived-event set: a failed sync is logged, not
// surfaced, so a partial failure never blanks the page.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	tenantId, err := tenant.CurrentId(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid or missing from parameter", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid or missing to parameter", http.StatusBadRequest)
		return
	}

	if h.synchronize != nil {
		if err := h.synchronize(r.Context()); err != nil {
			log.Errorf("synchronization on calendar load failed: %v", err)
		}
	}
	if h.ensureVisibility != nil {
		if err := h.ensureVisibility(r.Context()); err != nil {
			log.Errorf("one-on-one visibility check on calendar load failed: %v", err)
		}
	}

	events, err := h.repo.GetEvents(r.Context(), tenantId, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, eventToDTO(event))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// EventEditDTO carries the only event fields users may author directly.
type EventEditDTO struct {
	Title *string `json:"title"`
	Notes *string `json:"notes"`
}

// EditEvent applies a user edit to an event's free-text fields. An edited
// title is pinned so synchronization stops rewriting it.
func (h *Handler) EditEvent(w http.ResponseWriter, r *http.Request) {
	tenantId, err := tenant.CurrentId(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var dto EventEditDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	uid := mux.Vars(r)["eventUid"]
	if err := h.repo.UpdateUserFields(r.Context(), tenantId, uid, dto.Title, dto.Notes); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func eventToDTO(event Event) EventDTO {
	return EventDTO{
		UID:              event.UID,
		Title:            event.Title,
		StartDate:        event.StartDate,
		EndDate:          event.EndDate,
		EventType:        string(event.EventType),
		AllDay:           event.AllDay,
		Recurrence:       event.Recurrence,
		TeamMemberId:     event.TeamMemberID,
		LinkedEntityType: string(event.LinkedEntityType),
		LinkedEntityId:   event.LinkedEntityID,
		Notes:            event.Notes,
	}
}
