package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/naijabook/platform/internal/availability"
	"github.com/naijabook/platform/pkg/logging"
)

type slotFinder interface {
	FindSlots(ctx context.Context, tenantID, serviceID uuid.UUID, from, to time.Time, opts availability.Options) ([]availability.Slot, error)
}

// AvailabilityHandler serves the public slot search.
type AvailabilityHandler struct {
	engine slotFinder
	logger *logging.Logger
}

func NewAvailabilityHandler(engine slotFinder, logger *logging.Logger) *AvailabilityHandler {
	if engine == nil {
		panic("handlers: availability engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{engine: engine, logger: logger}
}

type availabilityResponse struct {
	Slots []availability.Slot `json:"slots"`
	Count int                 `json:"count"`
}

// FindSlots lists bookable openings for a service.
// GET /api/v1/availability?service_id=...&staff_id=...&from=...&to=...&step_minutes=...&preferred_times=...&timezone=...
func (h *AvailabilityHandler) FindSlots(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	serviceID, err := uuid.Parse(q.Get("service_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid service_id"})
		return
	}

	var opts availability.Options
	if raw := q.Get("staff_id"); raw != "" {
		staffID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid staff_id"})
			return
		}
		opts.StaffID = &staffID
	}
	if raw := q.Get("step_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid step_minutes"})
			return
		}
		opts.Step = time.Duration(minutes) * time.Minute
	}
	if raw := q.Get("preferred_times"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				opts.PreferredTimes = append(opts.PreferredTimes, trimmed)
			}
		}
	}
	opts.Timezone = q.Get("timezone")

	var from, to time.Time
	if raw := q.Get("from"); raw != "" {
		if from, err = parseTimeParam(raw, false); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid from"})
			return
		}
	}
	if raw := q.Get("to"); raw != "" {
		if to, err = parseTimeParam(raw, true); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid to"})
			return
		}
	}

	slots, err := h.engine.FindSlots(r.Context(), tenantID, serviceID, from, to, opts)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	if slots == nil {
		slots = []availability.Slot{}
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Slots: slots, Count: len(slots)})
}
