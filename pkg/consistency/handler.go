package consistency

import (
	"encoding/json"
	"net/http"

	"github.com/kalendra/kalendra/internal/rest"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// Validate runs the read-only consistency scan and returns the report.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ValidateEventConsistency(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "validation failed", Details: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Repair validates and corrects every reported inconsistency.
func (h *Handler) Repair(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RepairMissingEvents(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "repair failed", Details: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// EnsureVisibility runs the lightweight upcoming one-on-one guarantee.
func (h *Handler) EnsureVisibility(w http.ResponseWriter, r *http.Request) {
	if err := h.service.EnsureOneOnOneVisibility(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "visibility check failed", Details: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
