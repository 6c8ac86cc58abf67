package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/naijabook/platform/internal/calendar"
	"github.com/naijabook/platform/internal/catalog"
	"github.com/naijabook/platform/internal/observability/metrics"
	"github.com/naijabook/platform/pkg/logging"
)

var bookingTracer = otel.Tracer("naijabook.internal.booking")

// serviceCatalog provides the service definitions bookings are validated
// against.
type serviceCatalog interface {
	GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*catalog.Service, error)
}

// hoursProvider returns a tenant's weekly opening grid.
type hoursProvider interface {
	ListBusinessHours(ctx context.Context, tenantID uuid.UUID) (catalog.WeekSchedule, error)
}

// Service validates booking requests against the tenant's catalog and
// calendar, then drives the store.
type Service struct {
	store   *Store
	catalog serviceCatalog
	hours   hoursProvider
	cal     calendar.BusinessCalendar
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger

	defaultTimezone string
	now             func() time.Time
}

// NewService constructs a booking service. The metrics handle may be nil.
func NewService(store *Store, cat serviceCatalog, hours hoursProvider, cal calendar.BusinessCalendar, defaultTimezone string, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("booking: store required")
	}
	if cat == nil {
		panic("booking: catalog required")
	}
	if hours == nil {
		panic("booking: hours provider required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cal.Holidays == nil && len(cal.Weekend) == 0 {
		cal = calendar.DefaultBusinessCalendar()
	}
	if defaultTimezone == "" {
		defaultTimezone = "Africa/Lagos"
	}
	return &Service{
		store:           store,
		catalog:         cat,
		hours:           hours,
		cal:             cal,
		metrics:         m,
		logger:          logger.Component("booking"),
		defaultTimezone: defaultTimezone,
		now:             time.Now,
	}
}

// CreateInput carries everything a caller supplies to book an appointment.
type CreateInput struct {
	TenantID  uuid.UUID
	ServiceID uuid.UUID
	StaffID   *uuid.UUID
	Customer  Customer

	StartTime time.Time
	Timezone  string

	Notes           string
	SpecialRequests string
	Source          BookingSource

	RecurrenceType      RecurrenceType
	RecurrenceInterval  int
	RecurrenceEndDate   *time.Time
	ParentAppointmentID *uuid.UUID
}

// CreateAppointment validates the request, books the slot, and returns the
// stored appointment. New appointments start pending; conflicts carry the
// blocking booking's reference so callers can surface it.
func (s *Service) CreateAppointment(ctx context.Context, input CreateInput) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("naijabook.tenant_id", input.TenantID.String()),
		attribute.String("naijabook.service_id", input.ServiceID.String()),
	)

	appt, svc, err := s.buildAppointment(ctx, input)
	if err != nil {
		span.RecordError(err)
		s.observe("create", err)
		return nil, err
	}

	if err := s.store.Create(ctx, appt, svc.Name); err != nil {
		span.RecordError(err)
		s.observe("create", err)
		if IsKind(err, KindAppointmentConflict) {
			s.logger.Info("booking conflict",
				"tenant_id", input.TenantID,
				"service_id", input.ServiceID,
				"requested_start", input.StartTime,
			)
		}
		return nil, err
	}

	s.observe("create", nil)
	s.logger.Info("appointment created",
		"tenant_id", appt.TenantID,
		"appointment_id", appt.ID,
		"booking_reference", appt.BookingReference,
		"start", appt.StartTime,
		"staff_assigned", !appt.Unassigned(),
	)
	return appt, nil
}

func (s *Service) buildAppointment(ctx context.Context, input CreateInput) (*Appointment, *catalog.Service, error) {
	if input.TenantID == uuid.Nil {
		return nil, nil, &Error{Kind: KindSchedulingError, Op: "create", Message: "tenant id is required"}
	}
	if input.ServiceID == uuid.Nil {
		return nil, nil, &Error{Kind: KindSchedulingError, Op: "create", Message: "service id is required", TenantID: input.TenantID}
	}
	if input.Customer.Name == "" || input.Customer.Phone == "" {
		return nil, nil, &Error{Kind: KindSchedulingError, Op: "create", Message: "customer name and phone are required", TenantID: input.TenantID}
	}
	if input.StartTime.IsZero() {
		return nil, nil, &Error{Kind: KindInvalidBookingTime, Op: "create", Message: "start time is required", TenantID: input.TenantID}
	}

	source := input.Source
	if source == "" {
		source = SourceOnline
	}
	tz := input.Timezone
	if tz == "" {
		tz = s.defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, nil, &Error{Kind: KindSchedulingError, Op: "create", Message: fmt.Sprintf("unknown timezone %q", tz), TenantID: input.TenantID, Err: err}
	}

	recurrence := input.RecurrenceType
	if recurrence == "" {
		recurrence = RecurrenceNone
	}
	if !recurrence.Valid() {
		return nil, nil, &Error{Kind: KindSchedulingError, Op: "create", Message: fmt.Sprintf("unknown recurrence type %q", input.RecurrenceType), TenantID: input.TenantID}
	}
	interval := input.RecurrenceInterval
	if interval <= 0 {
		interval = 1
	}

	svc, err := s.catalog.GetService(ctx, input.TenantID, input.ServiceID)
	if err != nil {
		if errorsIsServiceMissing(err) {
			return nil, nil, &Error{Kind: KindServiceUnavailable, Op: "create", Message: "service not found", TenantID: input.TenantID, ServiceID: input.ServiceID, Err: err}
		}
		return nil, nil, fmt.Errorf("booking: load service: %w", err)
	}
	if !svc.IsActive {
		return nil, nil, &Error{Kind: KindServiceUnavailable, Op: "create", Message: fmt.Sprintf("service %q is not active", svc.Name), TenantID: input.TenantID, ServiceID: svc.ID}
	}
	if (source == SourceOnline || source == SourceWidget) && !svc.IsOnlineBookable {
		return nil, nil, &Error{Kind: KindServiceUnavailable, Op: "create", Message: fmt.Sprintf("service %q cannot be booked online", svc.Name), TenantID: input.TenantID, ServiceID: svc.ID}
	}

	if err := s.validateBookingTime(ctx, "create", input.TenantID, svc, input.StartTime, loc); err != nil {
		return nil, nil, err
	}

	appt := &Appointment{
		TenantID:  input.TenantID,
		ServiceID: svc.ID,
		StaffID:   input.StaffID,
		Customer:  input.Customer,

		StartTime: input.StartTime,
		EndTime:   input.StartTime.Add(svc.EffectiveDuration()),
		Timezone:  tz,

		Status: StatusPending,

		PaymentRequired:   svc.PaymentRequired,
		PaymentAmountKobo: svc.PriceKobo,
		PaymentStatus:     PaymentPending,

		Notes:           input.Notes,
		SpecialRequests: input.SpecialRequests,
		Source:          source,

		RecurrenceType:      recurrence,
		RecurrenceInterval:  interval,
		RecurrenceEndDate:   input.RecurrenceEndDate,
		ParentAppointmentID: input.ParentAppointmentID,
	}
	return appt, svc, nil
}

// validateBookingTime enforces the advance-booking window and day-level
// openness: the start must fall on a configured business day that is neither
// a weekend nor an observed holiday. Whether the clock time fits inside the
// opening hours is the slot search's concern, so walk-ins booked by staff
// outside strict hours still go through.
func (s *Service) validateBookingTime(ctx context.Context, op string, tenantID uuid.UUID, svc *catalog.Service, start time.Time, loc *time.Location) error {
	now := s.now()
	if start.Before(now) {
		return &Error{Kind: KindInvalidBookingTime, Op: op, Message: "cannot book an appointment in the past", TenantID: tenantID, ServiceID: svc.ID, RequestedStart: start}
	}
	if minAdvance := time.Duration(svc.MinAdvanceHours) * time.Hour; start.Before(now.Add(minAdvance)) {
		return &Error{
			Kind: KindInvalidBookingTime, Op: op,
			Message:  fmt.Sprintf("appointments must be booked at least %d hours in advance", svc.MinAdvanceHours),
			TenantID: tenantID, ServiceID: svc.ID, RequestedStart: start,
		}
	}
	if start.After(now.AddDate(0, 0, svc.MaxAdvanceDays)) {
		return &Error{
			Kind: KindInvalidBookingTime, Op: op,
			Message:  fmt.Sprintf("appointments cannot be booked more than %d days in advance", svc.MaxAdvanceDays),
			TenantID: tenantID, ServiceID: svc.ID, RequestedStart: start,
		}
	}

	day := calendar.DateOf(start.In(loc))
	if s.cal.IsWeekend(day) {
		return &Error{Kind: KindInvalidBookingTime, Op: op, Message: "appointments cannot be booked on weekends", TenantID: tenantID, ServiceID: svc.ID, RequestedStart: start}
	}

	schedule, err := s.hours.ListBusinessHours(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("booking: load business hours: %w", err)
	}
	if len(schedule) == 0 {
		return &Error{Kind: KindSchedulingMisconfigured, Op: op, Message: "no business hours configured for tenant", TenantID: tenantID}
	}
	hrs := schedule.ForWeekday(day.Weekday())
	if hrs == nil || !hrs.IsOpen {
		return &Error{
			Kind: KindInvalidBookingTime, Op: op,
			Message:  fmt.Sprintf("business is closed on %s", day.Weekday()),
			TenantID: tenantID, ServiceID: svc.ID, RequestedStart: start,
		}
	}
	if hol, observed := s.cal.ObservedHoliday(day, hrs.ObservesPublicHolidays, hrs.ObservesReligiousHolidays); observed {
		return &Error{
			Kind: KindInvalidBookingTime, Op: op,
			Message:  fmt.Sprintf("business is closed for %s", hol.Name),
			TenantID: tenantID, ServiceID: svc.ID, RequestedStart: start,
		}
	}
	return nil
}

// RescheduleAppointment moves an existing booking to a new start, keeping
// the same service and staff. The new window is validated like a fresh
// booking; the appointment's own occupancy is ignored during conflict
// detection.
func (s *Service) RescheduleAppointment(ctx context.Context, tenantID, id uuid.UUID, newStart time.Time) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.reschedule")
	defer span.End()
	span.SetAttributes(
		attribute.String("naijabook.tenant_id", tenantID.String()),
		attribute.String("naijabook.appointment_id", id.String()),
	)

	existing, err := s.store.GetByID(ctx, tenantID, id)
	if err != nil {
		span.RecordError(err)
		s.observe("reschedule", err)
		return nil, err
	}
	svc, err := s.catalog.GetService(ctx, tenantID, existing.ServiceID)
	if err != nil {
		span.RecordError(err)
		s.observe("reschedule", err)
		if errorsIsServiceMissing(err) {
			return nil, &Error{Kind: KindServiceUnavailable, Op: "reschedule", Message: "service not found", TenantID: tenantID, ServiceID: existing.ServiceID, Err: err}
		}
		return nil, fmt.Errorf("booking: load service: %w", err)
	}

	if err := s.validateBookingTime(ctx, "reschedule", tenantID, svc, newStart, existing.Location()); err != nil {
		span.RecordError(err)
		s.observe("reschedule", err)
		return nil, err
	}

	updated, err := s.store.Reschedule(ctx, tenantID, id, newStart, newStart.Add(svc.EffectiveDuration()), svc.Name)
	if err != nil {
		span.RecordError(err)
		s.observe("reschedule", err)
		return nil, err
	}

	s.observe("reschedule", nil)
	s.logger.Info("appointment rescheduled",
		"tenant_id", tenantID,
		"appointment_id", id,
		"booking_reference", updated.BookingReference,
		"previous_start", existing.StartTime,
		"start", updated.StartTime,
	)
	return updated, nil
}

// ConfirmAppointment moves a pending or rescheduled booking to confirmed.
func (s *Service) ConfirmAppointment(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, "confirm", tenantID, id, s.store.Confirm)
}

// CancelAppointment releases the slot. Completed, cancelled, and no-show
// appointments cannot be cancelled.
func (s *Service) CancelAppointment(ctx context.Context, tenantID, id uuid.UUID, reason, cancelledBy string) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel")
	defer span.End()
	span.SetAttributes(
		attribute.String("naijabook.tenant_id", tenantID.String()),
		attribute.String("naijabook.appointment_id", id.String()),
	)

	appt, err := s.store.Cancel(ctx, tenantID, id, reason, cancelledBy)
	if err != nil {
		span.RecordError(err)
		s.observe("cancel", err)
		return nil, err
	}

	s.observe("cancel", nil)
	s.logger.Info("appointment cancelled",
		"tenant_id", tenantID,
		"appointment_id", id,
		"booking_reference", appt.BookingReference,
		"cancelled_by", cancelledBy,
	)
	return appt, nil
}

// CheckIn records customer arrival for a confirmed appointment.
func (s *Service) CheckIn(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, "check_in", tenantID, id, s.store.CheckIn)
}

// StartService marks service delivery as begun for a checked-in customer.
func (s *Service) StartService(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, "start_service", tenantID, id, s.store.StartService)
}

// CompleteAppointment finishes an in-progress appointment.
func (s *Service) CompleteAppointment(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, "complete", tenantID, id, s.store.Complete)
}

// MarkNoShow flags a missed appointment from any non-terminal status.
func (s *Service) MarkNoShow(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, "no_show", tenantID, id, s.store.MarkNoShow)
}

// ConfirmPayment settles payment for a booking; a pending appointment is
// confirmed in the same step.
func (s *Service) ConfirmPayment(ctx context.Context, tenantID, id uuid.UUID, transactionID string) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.confirm_payment")
	defer span.End()
	span.SetAttributes(
		attribute.String("naijabook.tenant_id", tenantID.String()),
		attribute.String("naijabook.appointment_id", id.String()),
	)

	appt, err := s.store.ConfirmPayment(ctx, tenantID, id, transactionID)
	if err != nil {
		span.RecordError(err)
		s.observe("confirm_payment", err)
		return nil, err
	}

	s.observe("confirm_payment", nil)
	s.logger.Info("payment confirmed",
		"tenant_id", tenantID,
		"appointment_id", id,
		"booking_reference", appt.BookingReference,
		"status", appt.Status,
	)
	return appt, nil
}

// RecordFeedback attaches a 1-5 rating and optional comment to a completed
// appointment.
func (s *Service) RecordFeedback(ctx context.Context, tenantID, id uuid.UUID, rating int32, feedback string) (*Appointment, error) {
	if rating < 1 || rating > 5 {
		return nil, &Error{Kind: KindSchedulingError, Op: "record feedback", Message: "rating must be between 1 and 5", TenantID: tenantID, AppointmentID: id}
	}
	return s.store.RecordFeedback(ctx, tenantID, id, rating, feedback)
}

// GetByID fetches one appointment scoped to the tenant.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return s.store.GetByID(ctx, tenantID, id)
}

// GetByReference looks an appointment up by its human-quotable reference.
func (s *Service) GetByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*Appointment, error) {
	return s.store.GetByReference(ctx, tenantID, reference)
}

// Upcoming lists appointments starting within the next daysAhead days
// (default 7), optionally narrowed to one staff member. Only bookings the
// customer can still show up for are included: pending, confirmed,
// checked_in.
func (s *Service) Upcoming(ctx context.Context, tenantID uuid.UUID, staffID *uuid.UUID, daysAhead int) ([]Appointment, error) {
	if daysAhead <= 0 {
		daysAhead = 7
	}
	from := s.now()
	return s.store.Upcoming(ctx, tenantID, staffID, from, from.AddDate(0, 0, daysAhead))
}

func (s *Service) transition(ctx context.Context, op string, tenantID, id uuid.UUID, fn func(context.Context, uuid.UUID, uuid.UUID) (*Appointment, error)) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking."+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("naijabook.tenant_id", tenantID.String()),
		attribute.String("naijabook.appointment_id", id.String()),
	)

	appt, err := fn(ctx, tenantID, id)
	if err != nil {
		span.RecordError(err)
		s.observe(op, err)
		return nil, err
	}

	s.observe(op, nil)
	s.logger.Info("appointment status changed",
		"tenant_id", tenantID,
		"appointment_id", id,
		"booking_reference", appt.BookingReference,
		"status", appt.Status,
	)
	return appt, nil
}

func (s *Service) observe(op string, err error) {
	s.metrics.ObserveBooking(op, outcomeOf(err))
	if IsKind(err, KindAppointmentConflict) {
		s.metrics.ObserveConflict(op)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsKind(err, KindAppointmentConflict):
		return "conflict"
	case IsKind(err, KindInvalidBookingTime),
		IsKind(err, KindServiceUnavailable),
		IsKind(err, KindInvalidStatusTransition),
		IsKind(err, KindSchedulingMisconfigured),
		IsKind(err, KindSchedulingError):
		return "rejected"
	default:
		return "error"
	}
}

func errorsIsServiceMissing(err error) bool {
	return errors.Is(err, catalog.ErrServiceNotFound)
}
