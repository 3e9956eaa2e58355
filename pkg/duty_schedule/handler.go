package duty_schedule

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

type DutyScheduleDTO struct {
	Id           string    `json:"id"`
	TeamMemberId string    `json:"teamMemberId"`
	DutyType     string    `json:"dutyType"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]DutyScheduleDTO, 0, len(schedules))
	for _, s := range schedules {
		dtos = append(dtos, scheduleToDTO(s))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var dto DutyScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), dtoToSchedule(dto))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "could not create duty schedule", Details: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(scheduleToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var dto DutyScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dto.Id = mux.Vars(r)["scheduleId"]

	updated, err := h.service.Update(r.Context(), dtoToSchedule(dto))
	if errors.Is(err, ErrDutyScheduleNotFound) {
		http.Error(w, "duty schedule not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(scheduleToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["scheduleId"]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func scheduleToDTO(s DutySchedule) DutyScheduleDTO {
	return DutyScheduleDTO{
		Id:           s.Id,
		TeamMemberId: s.TeamMemberId,
		DutyType:     s.DutyType,
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
	}
}

func dtoToSchedule(dto DutyScheduleDTO) DutySchedule {
	return DutySchedule{
		Id:           dto.Id,
		TeamMemberId: dto.TeamMemberId,
		DutyType:     dto.DutyType,
		StartDate:    dto.StartDate,
		EndDate:      dto.EndDate,
	}
}
