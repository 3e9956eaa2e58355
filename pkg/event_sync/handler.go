package event_sync

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

// Synchronize runs all three sync passes and returns the aggregate summary.
// Partial failures are reported inside the summary, not as an HTTP error.
func (h *Handler) Synchronize(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.SynchronizeAllEvents(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "synchronization failed", Details: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SynchronizeOneOnOnes runs only the one-on-one pass.
func (h *Handler) SynchronizeOneOnOnes(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SyncOneOnOneMeetings(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "one-on-one synchronization failed", Details: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
