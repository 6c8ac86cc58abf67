package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/naijabook/platform/internal/reporting"
	"github.com/naijabook/platform/pkg/logging"
)

type analyticsStore interface {
	Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*reporting.Summary, error)
	DailyCounts(ctx context.Context, tenantID uuid.UUID, from, to time.Time, statuses []string) ([]reporting.DayCount, error)
}

// AnalyticsHandler serves per-tenant appointment rollups.
type AnalyticsHandler struct {
	store  analyticsStore
	logger *logging.Logger
}

func NewAnalyticsHandler(store analyticsStore, logger *logging.Logger) *AnalyticsHandler {
	if store == nil {
		panic("handlers: analytics store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalyticsHandler{store: store, logger: logger}
}

// Summary returns status totals, rates, and revenue for a date range.
// GET /api/v1/analytics/summary?from=2025-01-01&to=2025-01-31
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}

	summary, err := h.store.Summarize(r.Context(), tenantID, from, to)
	if err != nil {
		h.logger.Error("analytics summary failed", "error", err, "tenant_id", tenantID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Daily returns booking volume per local day.
// GET /api/v1/analytics/daily?from=...&to=...&statuses=confirmed,completed
func (h *AnalyticsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}

	var statuses []string
	if raw := r.URL.Query().Get("statuses"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				statuses = append(statuses, trimmed)
			}
		}
	}

	days, err := h.store.DailyCounts(r.Context(), tenantID, from, to, statuses)
	if err != nil {
		h.logger.Error("analytics daily counts failed", "error", err, "tenant_id", tenantID)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if days == nil {
		days = []reporting.DayCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

// rangeParams parses the required from/to pair. Bare dates cover whole
// calendar days; the default range is the trailing thirty days.
func (h *AnalyticsHandler) rangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	var err error
	if raw := q.Get("from"); raw != "" {
		if from, err = parseTimeParam(raw, false); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid from"})
			return time.Time{}, time.Time{}, false
		}
	}
	if raw := q.Get("to"); raw != "" {
		if to, err = parseTimeParam(raw, true); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid to"})
			return time.Time{}, time.Time{}, false
		}
	}
	if !to.After(from) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to must be after from"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
