package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naijabook/platform/internal/booking"
	"github.com/naijabook/platform/internal/recurrence"
	"github.com/naijabook/platform/internal/tenancy"
)

type stubBookingService struct {
	appt *booking.Appointment
	list []booking.Appointment
	err  error

	calls          []string
	lastInput      booking.CreateInput
	lastStart      time.Time
	lastReason     string
	lastActor      string
	lastTxn        string
	lastRating     int32
	lastFeedback   string
	lastReference  string
	lastStaffID    *uuid.UUID
	lastDaysAhead  int
	lastTenantID   uuid.UUID
	lastApptID     uuid.UUID
}

func (s *stubBookingService) record(call string, tenantID, id uuid.UUID) (*booking.Appointment, error) {
	s.calls = append(s.calls, call)
	s.lastTenantID = tenantID
	s.lastApptID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.appt, nil
}

func (s *stubBookingService) CreateAppointment(ctx context.Context, input booking.CreateInput) (*booking.Appointment, error) {
	s.calls = append(s.calls, "create")
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.appt, nil
}

func (s *stubBookingService) RescheduleAppointment(ctx context.Context, tenantID, id uuid.UUID, newStart time.Time) (*booking.Appointment, error) {
	s.lastStart = newStart
	return s.record("reschedule", tenantID, id)
}

func (s *stubBookingService) ConfirmAppointment(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error) {
	return s.record("confirm", tenantID, id)
}

func (s *stubBookingService) CancelAppointment(ctx context.Context, tenantID, id uuid.UUID, reason, cancelledBy string) (*booking.Appointment, error) {
	s.lastReason = reason
	s.lastActor = cancelledBy
	return s.record("cancel", tenantID, id)
}

func (s *stubBookingService) CheckIn(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error) {
	return s.record("check-in", tenantID, id)
}

func (s *stubBookingService) StartService(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error) {
	return s.record("start", tenantID, id)
}

func (s *stubBookingService) CompleteAppointment(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error) {
	return s.record("complete", tenantID, id)
}

func (s *stubBookingService) MarkNoShow(ctx context.Context, tenantID, id uuid.UUID) (*booking.Appointment, error) {
	return s.record("no-show", tenantID, id)
}

func (s *stubBookingService) ConfirmPayment(ctx context.Context, tenantID, id uuid.UUID, transactionID string) (*booking.Appointment, error) {
	s.lastTxn = transactionID
	return s.record("confirm-payment", tenantID, id)
}

func (s *stubBookingService) RecordFeedback(ctx context.Context, tenantID, id uuid.UUID, rating int32, feedback string) (*booking.Appointment, error) {
	s.lastRating = rating
	s.lastFeedback = feedback
	return s.record("feedback", tenantID, id)
}

func (s *stubBookingService) GetByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*booking.Appointment, error) {
	s.calls = append(s.calls, "get-by-reference")
	s.lastTenantID = tenantID
	s.lastReference = reference
	if s.err != nil {
		return nil, s.err
	}
	return s.appt, nil
}

func (s *stubBookingService) Upcoming(ctx context.Context, tenantID uuid.UUID, staffID *uuid.UUID, daysAhead int) ([]booking.Appointment, error) {
	s.calls = append(s.calls, "upcoming")
	s.lastTenantID = tenantID
	s.lastStaffID = staffID
	s.lastDaysAhead = daysAhead
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

type stubSeriesExpander struct {
	children   []*booking.Appointment
	err        error
	called     bool
	lastParent *booking.Appointment
	lastRule   recurrence.Rule
}

func (s *stubSeriesExpander) Expand(ctx context.Context, parent *booking.Appointment, rule recurrence.Rule) ([]*booking.Appointment, error) {
	s.called = true
	s.lastParent = parent
	s.lastRule = rule
	return s.children, s.err
}

func sampleAppointment(tenantID uuid.UUID) *booking.Appointment {
	start := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	return &booking.Appointment{
		ID:               uuid.New(),
		TenantID:         tenantID,
		ServiceID:        uuid.New(),
		Customer:         booking.Customer{Name: "Adaeze Obi", Phone: "+2348012345678"},
		StartTime:        start,
		EndTime:          start.Add(45 * time.Minute),
		Timezone:         "Africa/Lagos",
		Status:           booking.StatusPending,
		BookingReference: "BK3F2A9C1B030410007X4K",
		Source:           booking.SourceOnline,
		RecurrenceType:   booking.RecurrenceNone,
	}
}

func tenantRequest(method, target string, body []byte, tenantID uuid.UUID) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	}
	return req.WithContext(tenancy.WithTenantID(req.Context(), tenantID))
}

func withAppointmentParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("appointmentID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateBooksAppointment(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, &stubSeriesExpander{}, nil)

	staffID := uuid.New()
	body, _ := json.Marshal(map[string]any{
		"service_id": svc.appt.ServiceID.String(),
		"staff_id":   staffID.String(),
		"customer":   map[string]string{"name": "Adaeze Obi", "phone": "+2348012345678"},
		"start_time": "2025-03-04T10:00:00+01:00",
		"timezone":   "Africa/Lagos",
		"notes":      "first visit",
	})
	rec := httptest.NewRecorder()

	handler.Create(rec, tenantRequest(http.MethodPost, "/api/v1/appointments", body, tenantID))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"create"}, svc.calls)
	assert.Equal(t, tenantID, svc.lastInput.TenantID)
	assert.Equal(t, svc.appt.ServiceID, svc.lastInput.ServiceID)
	require.NotNil(t, svc.lastInput.StaffID)
	assert.Equal(t, staffID, *svc.lastInput.StaffID)
	assert.Equal(t, "first visit", svc.lastInput.Notes)

	var resp createAppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Occurrences)
	assert.Empty(t, resp.Series)
	assert.Equal(t, svc.appt.BookingReference, resp.Appointment.BookingReference)
}

func TestCreateRejectsBadInput(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, nil, nil)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"service_id": `},
		{"bad service id", `{"service_id": "not-a-uuid"}`},
		{"bad staff id", `{"service_id": "` + uuid.NewString() + `", "staff_id": "nope"}`},
		{"bad recurrence type", `{"service_id": "` + uuid.NewString() + `", "recurrence": {"type": "fortnightly"}}`},
		{"bad recurrence end", `{"service_id": "` + uuid.NewString() + `", "recurrence": {"type": "weekly", "end_date": "soon"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Create(rec, tenantRequest(http.MethodPost, "/api/v1/appointments", []byte(tc.body), tenantID))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.calls)
		})
	}
}

func TestCreateRequiresTenant(t *testing.T) {
	handler := NewBookingHandler(&stubBookingService{}, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateMapsConflictToConflictStatus(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{err: &booking.Error{
		Kind:                 booking.KindAppointmentConflict,
		Op:                   "create",
		Message:              "slot taken",
		ConflictingReference: "BKAA11BB22030410009ZZZ",
	}}
	handler := NewBookingHandler(svc, nil, nil)

	body := []byte(`{"service_id": "` + uuid.NewString() + `", "start_time": "2025-03-04T10:00:00Z"}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, tenantRequest(http.MethodPost, "/api/v1/appointments", body, tenantID))

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "slot taken", resp.Error)
	assert.Equal(t, "appointment_conflict", resp.Kind)
	assert.Equal(t, "BKAA11BB22030410009ZZZ", resp.ConflictingReference)
}

func TestCreateExpandsRecurringSeries(t *testing.T) {
	tenantID := uuid.New()
	parent := sampleAppointment(tenantID)
	children := []*booking.Appointment{sampleAppointment(tenantID), sampleAppointment(tenantID)}
	svc := &stubBookingService{appt: parent}
	expander := &stubSeriesExpander{children: children}
	handler := NewBookingHandler(svc, expander, nil)

	body := []byte(`{
		"service_id": "` + parent.ServiceID.String() + `",
		"customer": {"name": "Adaeze Obi", "phone": "+2348012345678"},
		"start_time": "2025-03-04T10:00:00Z",
		"recurrence": {"type": "weekly", "interval": 1, "end_date": "2025-06-30"}
	}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, tenantRequest(http.MethodPost, "/api/v1/appointments", body, tenantID))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, expander.called)
	assert.Equal(t, parent, expander.lastParent)
	assert.Equal(t, booking.RecurrenceWeekly, expander.lastRule.Type)
	assert.Equal(t, 1, expander.lastRule.Interval)
	assert.True(t, expander.lastRule.EndDate.Equal(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, booking.RecurrenceWeekly, svc.lastInput.RecurrenceType)
	require.NotNil(t, svc.lastInput.RecurrenceEndDate)

	var resp createAppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Occurrences)
	assert.Len(t, resp.Series, 2)
	assert.Empty(t, resp.Warning)
}

func TestCreateReportsAbortedSeries(t *testing.T) {
	tenantID := uuid.New()
	parent := sampleAppointment(tenantID)
	svc := &stubBookingService{appt: parent}
	expander := &stubSeriesExpander{
		children: []*booking.Appointment{sampleAppointment(tenantID)},
		err:      &booking.Error{Kind: booking.KindSchedulingMisconfigured, Op: "create", Message: "no hours"},
	}
	handler := NewBookingHandler(svc, expander, nil)

	body := []byte(`{
		"service_id": "` + parent.ServiceID.String() + `",
		"customer": {"name": "Adaeze Obi", "phone": "+2348012345678"},
		"start_time": "2025-03-04T10:00:00Z",
		"recurrence": {"type": "daily", "interval": 1}
	}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, tenantRequest(http.MethodPost, "/api/v1/appointments", body, tenantID))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp createAppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Occurrences)
	assert.NotEmpty(t, resp.Warning)
}

func TestGetByReference(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, nil, nil)

	req := tenantRequest(http.MethodGet, "/api/v1/bookings/"+svc.appt.BookingReference, nil, tenantID)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("reference", svc.appt.BookingReference)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	handler.GetByReference(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, svc.appt.BookingReference, svc.lastReference)

	var appt booking.Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&appt))
	assert.Equal(t, svc.appt.ID, appt.ID)
}

func TestGetByReferenceNotFound(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{err: booking.ErrAppointmentNotFound}
	handler := NewBookingHandler(svc, nil, nil)

	req := tenantRequest(http.MethodGet, "/api/v1/bookings/BKDEADBEEF000000000000", nil, tenantID)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("reference", "BKDEADBEEF000000000000")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	handler.GetByReference(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpcomingPassesWindowAndStaff(t *testing.T) {
	tenantID := uuid.New()
	staffID := uuid.New()
	svc := &stubBookingService{list: []booking.Appointment{*sampleAppointment(tenantID)}}
	handler := NewBookingHandler(svc, nil, nil)

	rec := httptest.NewRecorder()
	target := "/api/v1/appointments/upcoming?days_ahead=5&staff_id=" + staffID.String()
	handler.Upcoming(rec, tenantRequest(http.MethodGet, target, nil, tenantID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.lastDaysAhead)
	require.NotNil(t, svc.lastStaffID)
	assert.Equal(t, staffID, *svc.lastStaffID)

	var resp struct {
		Appointments []booking.Appointment `json:"appointments"`
		Count        int                   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
}

func TestUpcomingDefaultsFilters(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{}
	handler := NewBookingHandler(svc, nil, nil)

	rec := httptest.NewRecorder()
	handler.Upcoming(rec, tenantRequest(http.MethodGet, "/api/v1/appointments/upcoming", nil, tenantID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.lastStaffID)
	assert.Zero(t, svc.lastDaysAhead)

	var resp struct {
		Appointments []booking.Appointment `json:"appointments"`
		Count        int                   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Appointments)
}

func TestUpcomingRejectsBadParams(t *testing.T) {
	tenantID := uuid.New()

	for name, query := range map[string]string{
		"days not a number": "?days_ahead=zero",
		"days below one":    "?days_ahead=0",
		"malformed staff":   "?staff_id=not-a-uuid",
	} {
		t.Run(name, func(t *testing.T) {
			svc := &stubBookingService{}
			handler := NewBookingHandler(svc, nil, nil)

			rec := httptest.NewRecorder()
			handler.Upcoming(rec, tenantRequest(http.MethodGet, "/api/v1/appointments/upcoming"+query, nil, tenantID))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.calls)
		})
	}
}

func TestRescheduleValidatesBody(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, nil, nil)
	apptID := uuid.New()

	req := tenantRequest(http.MethodPost, "/api/v1/appointments/"+apptID.String()+"/reschedule", []byte(`{}`), tenantID)
	rec := httptest.NewRecorder()
	handler.Reschedule(rec, withAppointmentParam(req, apptID.String()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.calls)
}

func TestRescheduleMovesAppointment(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, nil, nil)
	apptID := uuid.New()

	body := []byte(`{"start_time": "2025-03-11T14:00:00+01:00"}`)
	req := tenantRequest(http.MethodPost, "/api/v1/appointments/"+apptID.String()+"/reschedule", body, tenantID)
	rec := httptest.NewRecorder()
	handler.Reschedule(rec, withAppointmentParam(req, apptID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"reschedule"}, svc.calls)
	assert.Equal(t, apptID, svc.lastApptID)
	assert.True(t, svc.lastStart.Equal(time.Date(2025, 3, 11, 13, 0, 0, 0, time.UTC)))
}

func TestCancelAcceptsEmptyBody(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, nil, nil)
	apptID := uuid.New()

	req := tenantRequest(http.MethodPost, "/api/v1/appointments/"+apptID.String()+"/cancel", nil, tenantID)
	rec := httptest.NewRecorder()
	handler.Cancel(rec, withAppointmentParam(req, apptID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cancel"}, svc.calls)
	assert.Empty(t, svc.lastReason)
}

func TestCancelPassesReason(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, nil, nil)
	apptID := uuid.New()

	body := []byte(`{"reason": "customer travel", "cancelled_by": "customer"}`)
	req := tenantRequest(http.MethodPost, "/api/v1/appointments/"+apptID.String()+"/cancel", body, tenantID)
	rec := httptest.NewRecorder()
	handler.Cancel(rec, withAppointmentParam(req, apptID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customer travel", svc.lastReason)
	assert.Equal(t, "customer", svc.lastActor)
}

func TestLifecycleTransitions(t *testing.T) {
	tenantID := uuid.New()
	apptID := uuid.New()

	cases := []struct {
		name string
		call func(h *BookingHandler, w http.ResponseWriter, r *http.Request)
		want string
	}{
		{"confirm", (*BookingHandler).Confirm, "confirm"},
		{"check-in", (*BookingHandler).CheckIn, "check-in"},
		{"start", (*BookingHandler).Start, "start"},
		{"complete", (*BookingHandler).Complete, "complete"},
		{"no-show", (*BookingHandler).NoShow, "no-show"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubBookingService{appt: sampleAppointment(tenantID)}
			handler := NewBookingHandler(svc, nil, nil)
			req := tenantRequest(http.MethodPost, "/api/v1/appointments/"+apptID.String()+"/"+tc.name, nil, tenantID)
			rec := httptest.NewRecorder()

			tc.call(handler, rec, withAppointmentParam(req, apptID.String()))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, []string{tc.want}, svc.calls)
			assert.Equal(t, tenantID, svc.lastTenantID)
			assert.Equal(t, apptID, svc.lastApptID)
		})
	}
}

func TestTransitionMapsIllegalMove(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{err: &booking.Error{
		Kind:    booking.KindInvalidStatusTransition,
		Op:      "complete",
		Message: "cannot transition from pending to completed",
	}}
	handler := NewBookingHandler(svc, nil, nil)
	apptID := uuid.New()

	req := tenantRequest(http.MethodPost, "/api/v1/appointments/"+apptID.String()+"/complete", nil, tenantID)
	rec := httptest.NewRecorder()
	handler.Complete(rec, withAppointmentParam(req, apptID.String()))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTransitionRejectsBadAppointmentID(t *testing.T) {
	tenantID := uuid.New()
	handler := NewBookingHandler(&stubBookingService{}, nil, nil)

	req := tenantRequest(http.MethodPost, "/api/v1/appointments/nope/confirm", nil, tenantID)
	rec := httptest.NewRecorder()
	handler.Confirm(rec, withAppointmentParam(req, "nope"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmPaymentRequiresTransactionID(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, nil, nil)
	apptID := uuid.New()

	req := tenantRequest(http.MethodPost, "/api/v1/appointments/"+apptID.String()+"/payment/confirm", []byte(`{"transaction_id": "  "}`), tenantID)
	rec := httptest.NewRecorder()
	handler.ConfirmPayment(rec, withAppointmentParam(req, apptID.String()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.calls)
}

func TestConfirmPaymentRecordsTransaction(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, nil, nil)
	apptID := uuid.New()

	req := tenantRequest(http.MethodPost, "/api/v1/appointments/"+apptID.String()+"/payment/confirm", []byte(`{"transaction_id": "PSK-12345"}`), tenantID)
	rec := httptest.NewRecorder()
	handler.ConfirmPayment(rec, withAppointmentParam(req, apptID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PSK-12345", svc.lastTxn)
}

func TestFeedbackPassesRating(t *testing.T) {
	tenantID := uuid.New()
	svc := &stubBookingService{appt: sampleAppointment(tenantID)}
	handler := NewBookingHandler(svc, nil, nil)
	apptID := uuid.New()

	req := tenantRequest(http.MethodPost, "/api/v1/appointments/"+apptID.String()+"/feedback", []byte(`{"rating": 5, "feedback": "excellent"}`), tenantID)
	rec := httptest.NewRecorder()
	handler.Feedback(rec, withAppointmentParam(req, apptID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(5), svc.lastRating)
	assert.Equal(t, "excellent", svc.lastFeedback)
}
