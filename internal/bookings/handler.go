package bookings

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Handler exposes bookings to the admin API.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a bookings handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if store == nil {
		panic("bookings: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

type listResponse struct {
	Bookings []Booking `json:"bookings"`
	Count    int       `json:"count"`
}

// List handles GET /admin/bookings?limit=N.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	out, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
		return
	}
	if out == nil {
		out = []Booking{}
	}
	h.writeJSON(w, http.StatusOK, listResponse{Bookings: out, Count: len(out)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
