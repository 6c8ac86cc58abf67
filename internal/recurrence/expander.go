package recurrence

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/naijabook/platform/internal/booking"
	"github.com/naijabook/platform/internal/calendar"
	"github.com/naijabook/platform/internal/observability/metrics"
	"github.com/naijabook/platform/pkg/logging"
)

var recurrenceTracer = otel.Tracer("naijabook.internal.recurrence")

// MaxOccurrences caps a series at one year of weekly visits, parent
// included, regardless of the rule's end date.
const MaxOccurrences = 52

// Rule describes how a series advances from its parent appointment.
// A zero EndDate leaves the series bounded by the occurrence cap alone.
type Rule struct {
	Type     booking.RecurrenceType
	Interval int
	EndDate  time.Time
}

type appointmentCreator interface {
	CreateAppointment(ctx context.Context, input booking.CreateInput) (*booking.Appointment, error)
}

// Expander turns one booked parent appointment into a best-effort series by
// driving repeated create calls. Occurrence dates that collide with existing
// bookings (or land on closed days) are skipped rather than failing the
// whole series.
type Expander struct {
	creator appointmentCreator
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger

	maxOccurrences int
}

// NewExpander constructs an expander. The metrics handle may be nil.
func NewExpander(creator appointmentCreator, m *metrics.SchedulingMetrics, logger *logging.Logger) *Expander {
	if creator == nil {
		panic("recurrence: appointment creator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Expander{
		creator:        creator,
		metrics:        m,
		logger:         logger.Component("recurrence"),
		maxOccurrences: MaxOccurrences,
	}
}

// Expand generates the child appointments of an already-created parent and
// returns them in occurrence order. Dates rejected as conflicts or invalid
// booking times are skipped without consuming the occurrence cap. Any other
// create failure aborts the series; the children created before the abort
// are returned with the error since they are already committed.
func (e *Expander) Expand(ctx context.Context, parent *booking.Appointment, rule Rule) ([]*booking.Appointment, error) {
	if parent == nil {
		return nil, &booking.Error{Kind: booking.KindSchedulingError, Op: "expand series", Message: "parent appointment required"}
	}

	ctx, span := recurrenceTracer.Start(ctx, "recurrence.expand")
	defer span.End()
	span.SetAttributes(
		attribute.String("naijabook.tenant_id", parent.TenantID.String()),
		attribute.String("naijabook.parent_appointment_id", parent.ID.String()),
		attribute.String("naijabook.recurrence_type", string(rule.Type)),
	)

	if rule.Type == "" || rule.Type == booking.RecurrenceNone {
		return nil, nil
	}
	if !rule.Type.Valid() {
		return nil, &booking.Error{
			Kind:     booking.KindSchedulingError,
			Op:       "expand series",
			Message:  fmt.Sprintf("unknown recurrence type %q", rule.Type),
			TenantID: parent.TenantID,
		}
	}
	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}

	loc := parent.Location()
	localStart := parent.StartTime.In(loc)
	cur := calendar.DateOf(localStart)
	var endDate *calendar.Date
	if !rule.EndDate.IsZero() {
		d := calendar.DateOf(rule.EndDate.In(loc))
		endDate = &d
	}

	var children []*booking.Appointment
	skipped := 0
	// The parent occupies the first seat in the cap.
	for count := 1; count < e.maxOccurrences; {
		if endDate != nil && !cur.Before(*endDate) {
			break
		}
		cur = advance(cur, rule.Type, interval)
		if endDate != nil && cur.After(*endDate) {
			break
		}

		next := calendar.At(cur, localStart.Hour(), localStart.Minute(), loc)
		child, err := e.creator.CreateAppointment(ctx, booking.CreateInput{
			TenantID:  parent.TenantID,
			ServiceID: parent.ServiceID,
			StaffID:   parent.StaffID,
			Customer:  parent.Customer,

			StartTime: next,
			Timezone:  parent.Timezone,

			Notes:           parent.Notes,
			SpecialRequests: parent.SpecialRequests,
			Source:          parent.Source,

			RecurrenceType:      rule.Type,
			RecurrenceInterval:  interval,
			ParentAppointmentID: &parent.ID,
		})
		if err != nil {
			if booking.SkippableInSeries(err) {
				skipped++
				e.metrics.ObserveRecurrence("skipped", 1)
				e.logger.Warn("skipping series occurrence",
					"tenant_id", parent.TenantID,
					"parent_appointment_id", parent.ID,
					"occurrence", next,
					"reason", err.Error(),
				)
				continue
			}
			span.RecordError(err)
			e.metrics.ObserveRecurrence("aborted", 1)
			return children, fmt.Errorf("recurrence: expand series: %w", err)
		}

		children = append(children, child)
		count++
	}

	e.metrics.ObserveRecurrence("created", len(children))
	e.logger.Info("series expanded",
		"tenant_id", parent.TenantID,
		"parent_appointment_id", parent.ID,
		"recurrence_type", rule.Type,
		"children", len(children),
		"skipped", skipped,
	)
	return children, nil
}

// advance moves the anchor date one rule step forward. Monthly advances by a
// fixed thirty days rather than true calendar months; recurrence dates drift
// against month boundaries and that drift is the documented contract.
func advance(d calendar.Date, typ booking.RecurrenceType, interval int) calendar.Date {
	switch typ {
	case booking.RecurrenceDaily:
		return d.AddDays(interval)
	case booking.RecurrenceWeekly:
		return d.AddDays(7 * interval)
	case booking.RecurrenceMonthly:
		return d.AddDays(30 * interval)
	case booking.RecurrenceYearly:
		return d.AddYears(interval)
	}
	return d
}
