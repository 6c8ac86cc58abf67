package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/naijabook/platform/internal/booking"
	"github.com/naijabook/platform/internal/recurrence"
	"github.com/naijabook/platform/pkg/logging"
)

// bookingService is the slice of the booking service the handler drives.
type bookingService interface {
	CreateAppointment(ctx context.Context, input booking.CreateInput) (*booking.Appointment, error)
	RescheduleAppointment(ctx context.Context, tenantID, id uuid.UUID, newStart time.Time) (*booking.Appointment, error)
	ConfirmAppointment(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error)
	CancelAppointment(ctx context.Context, tenantID, id uuid.UUID, reason, cancelledBy string) (*booking.Appointment, error)
	CheckIn(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error)
	StartService(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error)
	CompleteAppointment(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error)
	MarkNoShow(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error)
	ConfirmPayment(ctx context.Context, tenantID, id uuid.UUID, transactionID string) (*booking.Appointment, error)
	RecordFeedback(ctx context.Context, tenantID, id uuid.UUID, rating int32, feedback string) (*booking.Appointment, error)
	GetByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*booking.Appointment, error)
	Upcoming(ctx context.Context, tenantID uuid.UUID, staffID *uuid.UUID, daysAhead int) ([]booking.Appointment, error)
}

// seriesExpander generates the child occurrences of a recurring booking.
type seriesExpander interface {
	Expand(ctx context.Context, parent *booking.Appointment, rule recurrence.Rule) ([]*booking.Appointment, error)
}

// BookingHandler exposes the appointment lifecycle over HTTP.
type BookingHandler struct {
	service  bookingService
	expander seriesExpander
	logger   *logging.Logger
}

func NewBookingHandler(service bookingService, expander seriesExpander, logger *logging.Logger) *BookingHandler {
	if service == nil {
		panic("handlers: booking service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{service: service, expander: expander, logger: logger}
}

type recurrenceRequest struct {
	Type     string `json:"type"`
	Interval int    `json:"interval"`
	EndDate  string `json:"end_date,omitempty"`
}

type createAppointmentRequest struct {
	ServiceID       string             `json:"service_id"`
	StaffID         string             `json:"staff_id,omitempty"`
	Customer        booking.Customer   `json:"customer"`
	StartTime       time.Time          `json:"start_time"`
	Timezone        string             `json:"timezone,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	SpecialRequests string             `json:"special_requests,omitempty"`
	Source          string             `json:"booking_source,omitempty"`
	Recurrence      *recurrenceRequest `json:"recurrence,omitempty"`
}

type createAppointmentResponse struct {
	Appointment *booking.Appointment   `json:"appointment"`
	Series      []*booking.Appointment `json:"series,omitempty"`
	Occurrences int                    `json:"occurrences"`
	Warning     string                 `json:"warning,omitempty"`
}

// Create books an appointment, expanding a recurrence rule into child
// bookings when one is supplied.
// POST /api/v1/appointments
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid service_id"})
		return
	}

	input := booking.CreateInput{
		TenantID:        tenantID,
		ServiceID:       serviceID,
		Customer:        req.Customer,
		StartTime:       req.StartTime,
		Timezone:        req.Timezone,
		Notes:           req.Notes,
		SpecialRequests: req.SpecialRequests,
		Source:          booking.BookingSource(req.Source),
	}
	if req.StaffID != "" {
		staffID, err := uuid.Parse(req.StaffID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid staff_id"})
			return
		}
		input.StaffID = &staffID
	}

	var rule recurrence.Rule
	if req.Recurrence != nil {
		rule.Type = booking.RecurrenceType(req.Recurrence.Type)
		rule.Interval = req.Recurrence.Interval
		if !rule.Type.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid recurrence type"})
			return
		}
		if req.Recurrence.EndDate != "" {
			// The end date's calendar day is the last includable occurrence,
			// so a bare date must stay at its own midnight.
			end, err := parseTimeParam(req.Recurrence.EndDate, false)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid recurrence end_date"})
				return
			}
			rule.EndDate = end
		}
		input.RecurrenceType = rule.Type
		input.RecurrenceInterval = rule.Interval
		if !rule.EndDate.IsZero() {
			endDate := rule.EndDate
			input.RecurrenceEndDate = &endDate
		}
	}

	parent, err := h.service.CreateAppointment(r.Context(), input)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}

	resp := createAppointmentResponse{Appointment: parent, Occurrences: 1}
	if rule.Type != "" && rule.Type != booking.RecurrenceNone && h.expander != nil {
		children, err := h.expander.Expand(r.Context(), parent, rule)
		resp.Series = children
		resp.Occurrences += len(children)
		if err != nil {
			// The parent and earlier children are already booked; report
			// what exists rather than failing a partially committed series.
			h.logger.Error("recurring series aborted", "error", err,
				"tenant_id", tenantID, "parent_id", parent.ID, "created", len(children))
			resp.Warning = "recurring series stopped early; later occurrences were not booked"
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetByReference looks a booking up by its human-shareable reference.
// GET /api/v1/bookings/{reference}
func (h *BookingHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	reference := strings.TrimSpace(chi.URLParam(r, "reference"))
	if reference == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing reference"})
		return
	}

	appt, err := h.service.GetByReference(r.Context(), tenantID, reference)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Upcoming lists the tenant's next appointments, optionally narrowed to one
// staff member.
// GET /api/v1/appointments/upcoming?staff_id=...&days_ahead=N
func (h *BookingHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	var staffID *uuid.UUID
	if raw := r.URL.Query().Get("staff_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid staff_id"})
			return
		}
		staffID = &id
	}
	var daysAhead int
	if raw := r.URL.Query().Get("days_ahead"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid days_ahead"})
			return
		}
		daysAhead = n
	}

	appts, err := h.service.Upcoming(r.Context(), tenantID, staffID, daysAhead)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	if appts == nil {
		appts = []booking.Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"appointments": appts,
		"count":        len(appts),
	})
}

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time"`
}

// Reschedule moves an appointment to a new start.
// POST /api/v1/appointments/{appointmentID}/reschedule
func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	tenantID, apptID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	if req.StartTime.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing start_time"})
		return
	}

	appt, err := h.service.RescheduleAppointment(r.Context(), tenantID, apptID, req.StartTime)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type cancelRequest struct {
	Reason      string `json:"reason,omitempty"`
	CancelledBy string `json:"cancelled_by,omitempty"`
}

// Cancel releases the appointment's slot.
// POST /api/v1/appointments/{appointmentID}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	tenantID, apptID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}
	}

	appt, err := h.service.CancelAppointment(r.Context(), tenantID, apptID, req.Reason, req.CancelledBy)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Confirm moves a pending or rescheduled appointment to confirmed.
// POST /api/v1/appointments/{appointmentID}/confirm
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ConfirmAppointment)
}

// CheckIn records customer arrival.
// POST /api/v1/appointments/{appointmentID}/check-in
func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CheckIn)
}

// Start marks the service underway.
// POST /api/v1/appointments/{appointmentID}/start
func (h *BookingHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.StartService)
}

// Complete finishes the appointment.
// POST /api/v1/appointments/{appointmentID}/complete
func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CompleteAppointment)
}

// NoShow records that the customer never arrived.
// POST /api/v1/appointments/{appointmentID}/no-show
func (h *BookingHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkNoShow)
}

type confirmPaymentRequest struct {
	TransactionID string `json:"transaction_id"`
}

// ConfirmPayment records the external processor's capture.
// POST /api/v1/appointments/{appointmentID}/payment/confirm
func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	tenantID, apptID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	var req confirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.TransactionID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing transaction_id"})
		return
	}

	appt, err := h.service.ConfirmPayment(r.Context(), tenantID, apptID, req.TransactionID)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type feedbackRequest struct {
	Rating   int32  `json:"rating"`
	Feedback string `json:"feedback,omitempty"`
}

// Feedback stores the customer's rating for a completed appointment.
// POST /api/v1/appointments/{appointmentID}/feedback
func (h *BookingHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	tenantID, apptID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}

	appt, err := h.service.RecordFeedback(r.Context(), tenantID, apptID, req.Rating, req.Feedback)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, uuid.UUID) (*booking.Appointment, error)) {
	tenantID, apptID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	appt, err := fn(r.Context(), tenantID, apptID)
	if err != nil {
		writeSchedulingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *BookingHandler) pathIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	apptID, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid appointment id"})
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, apptID, true
}

// parseTimeParam accepts RFC3339 instants or bare dates. A bare date maps to
// midnight UTC, or to the following midnight when endOfDay is set so that the
// whole calendar day is covered in any tenant timezone.
func parseTimeParam(value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1)
	}
	return d, nil
}
