package one_on_one

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kalendra/kalendra/internal/rest"
)

type Handler struct {
	service Service
}

type OneOnOneDTO struct {
	Id                         string     `json:"id"`
	TeamMemberId               string     `json:"teamMemberId"`
	NextMeetingDate            *time.Time `json:"nextMeetingDate,omitempty"`
	NextMeetingCalendarEventId *string    `json:"nextMeetingCalendarEventId,omitempty"`
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) ListOneOnOnes(w http.ResponseWriter, r *http.Request) {
	oneOnOnes, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]OneOnOneDTO, 0, len(oneOnOnes))
	for _, o := range oneOnOnes {
		dtos = append(dtos, oneOnOneToDTO(o))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CreateOneOnOne(w http.ResponseWriter, r *http.Request) {
	var dto OneOnOneDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.TeamMemberId == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "missing teamMemberId",
			Details: "a one-on-one must reference a team member",
		})
		return
	}

	created, err := h.service.Create(r.Context(), dtoToOneOnOne(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(oneOnOneToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateOneOnOne(w http.ResponseWriter, r *http.Request) {
	var dto OneOnOneDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dto.Id = mux.Vars(r)["oneOnOneId"]

	updated, err := h.service.Update(r.Context(), dtoToOneOnOne(dto))
	if errors.Is(err, ErrOneOnOneNotFound) {
		http.Error(w, "one-on-one not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(oneOnOneToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteOneOnOne(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["oneOnOneId"]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func oneOnOneToDTO(o OneOnOne) OneOnOneDTO {
	return OneOnOneDTO{
		Id:                         o.Id,
		TeamMemberId:               o.TeamMemberId,
		NextMeetingDate:            o.NextMeetingDate,
		NextMeetingCalendarEventId: o.NextMeetingCalendarEventId,
	}
}

func dtoToOneOnOne(dto OneOnOneDTO) OneOnOne {
	return OneOnOne{
		Id:              dto.Id,
		TeamMemberId:    dto.TeamMemberId,
		NextMeetingDate: dto.NextMeetingDate,
	}
}
