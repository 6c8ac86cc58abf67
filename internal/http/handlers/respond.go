package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/naijabook/platform/internal/booking"
	"github.com/naijabook/platform/internal/tenancy"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorResponse is the wire shape for every failed request.
type errorResponse struct {
	Error                string `json:"error"`
	Kind                 string `json:"kind,omitempty"`
	ConflictingReference string `json:"conflicting_reference,omitempty"`
}

// writeSchedulingError maps the booking error taxonomy onto HTTP statuses:
// conflicts 409, bad times and illegal transitions 422, missing services and
// appointments 404, tenant misconfiguration and unknown failures 500.
func writeSchedulingError(w http.ResponseWriter, err error) {
	if errors.Is(err, booking.ErrAppointmentNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "appointment not found"})
		return
	}

	var se *booking.Error
	if !errors.As(err, &se) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	resp := errorResponse{
		Error:                se.Message,
		Kind:                 string(se.Kind),
		ConflictingReference: se.ConflictingReference,
	}
	if resp.Error == "" {
		resp.Error = string(se.Kind)
	}

	switch se.Kind {
	case booking.KindAppointmentConflict:
		writeJSON(w, http.StatusConflict, resp)
	case booking.KindInvalidBookingTime, booking.KindInvalidStatusTransition, booking.KindSchedulingError:
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case booking.KindServiceUnavailable:
		writeJSON(w, http.StatusNotFound, resp)
	case booking.KindSchedulingMisconfigured:
		writeJSON(w, http.StatusInternalServerError, resp)
	default:
		resp.Error = "internal error"
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

// tenantFromRequest pulls the tenant resolved by the auth middleware. It
// writes the failure response itself so callers can bail with a bare return.
func tenantFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing tenant"})
		return uuid.Nil, false
	}
	return tenantID, true
}
