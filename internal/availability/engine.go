package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/naijabook/platform/internal/booking"
	"github.com/naijabook/platform/internal/calendar"
	"github.com/naijabook/platform/internal/catalog"
	"github.com/naijabook/platform/internal/observability/metrics"
	"github.com/naijabook/platform/pkg/logging"
)

var availabilityTracer = otel.Tracer("naijabook.internal.availability")

// DefaultSearchDays bounds a slot search when the caller gives no end.
const DefaultSearchDays = 30

// Slot is one bookable opening. Slots are computed on demand and never
// persisted; booking one still goes through the conflict scan.
type Slot struct {
	ServiceID uuid.UUID       `json:"service_id"`
	StaffID   *uuid.UUID      `json:"staff_id,omitempty"`
	Window    calendar.Window `json:"window"`
}

// Options narrows and re-orders a slot search.
type Options struct {
	// StaffID searches one staff member's calendar; nil searches the
	// tenant's unassigned pool.
	StaffID *uuid.UUID
	// PreferredTimes are "15:04" wall-clock strings. When present, results
	// are re-sorted by distance from the nearest preferred time.
	PreferredTimes []string
	// Step overrides the spacing between candidate starts.
	Step time.Duration
	// Timezone overrides the tenant default for day boundaries.
	Timezone string
}

type bookingStore interface {
	ListBusyWindows(ctx context.Context, tenantID uuid.UUID, staffID *uuid.UUID, from, to time.Time) ([]booking.BusyInterval, error)
	Policy() booking.UnassignedPolicy
}

type serviceCatalog interface {
	GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*catalog.Service, error)
}

type hoursProvider interface {
	ListBusinessHours(ctx context.Context, tenantID uuid.UUID) (catalog.WeekSchedule, error)
}

// Engine computes open slots by walking tenant-local days, enumerating
// candidates inside business hours, and subtracting booked capacity.
type Engine struct {
	store   bookingStore
	catalog serviceCatalog
	hours   hoursProvider
	cal     calendar.BusinessCalendar
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger

	defaultTimezone string
	defaultStep     time.Duration
	searchDays      int
	now             func() time.Time
}

// NewEngine constructs a slot search engine. The metrics handle may be nil.
func NewEngine(store bookingStore, cat serviceCatalog, hours hoursProvider, cal calendar.BusinessCalendar, defaultTimezone string, m *metrics.SchedulingMetrics, logger *logging.Logger) *Engine {
	if store == nil {
		panic("availability: booking store required")
	}
	if cat == nil {
		panic("availability: catalog required")
	}
	if hours == nil {
		panic("availability: hours provider required")
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
	return &Engine{
		store:           store,
		catalog:         cat,
		hours:           hours,
		cal:             cal,
		metrics:         m,
		logger:          logger.Component("availability"),
		defaultTimezone: defaultTimezone,
		defaultStep:     calendar.DefaultSlotStep,
		searchDays:      DefaultSearchDays,
		now:             time.Now,
	}
}

// WithDefaultStep overrides the slot spacing used when a search does not
// request its own.
func (e *Engine) WithDefaultStep(step time.Duration) *Engine {
	if step > 0 {
		e.defaultStep = step
	}
	return e
}

// WithSearchWindow overrides how far ahead an open-ended search looks.
func (e *Engine) WithSearchWindow(days int) *Engine {
	if days > 0 {
		e.searchDays = days
	}
	return e
}

// FindSlots returns the open slots for the service between from and to.
// A zero from starts at now; a zero to searches thirty days out. An empty
// result is a valid answer, not an error.
func (e *Engine) FindSlots(ctx context.Context, tenantID, serviceID uuid.UUID, from, to time.Time, opts Options) ([]Slot, error) {
	ctx, span := availabilityTracer.Start(ctx, "availability.find_slots")
	defer span.End()
	span.SetAttributes(
		attribute.String("naijabook.tenant_id", tenantID.String()),
		attribute.String("naijabook.service_id", serviceID.String()),
	)

	started := time.Now()
	slots, err := e.findSlots(ctx, tenantID, serviceID, from, to, opts)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		span.RecordError(err)
		e.metrics.ObserveSlotSearch(searchOutcome(err), elapsed)
		return nil, err
	}
	e.metrics.ObserveSlotSearch("ok", elapsed)
	span.SetAttributes(attribute.Int("naijabook.slot_count", len(slots)))
	return slots, nil
}

func (e *Engine) findSlots(ctx context.Context, tenantID, serviceID uuid.UUID, from, to time.Time, opts Options) ([]Slot, error) {
	if tenantID == uuid.Nil || serviceID == uuid.Nil {
		return nil, &booking.Error{Kind: booking.KindSchedulingError, Op: "find slots", Message: "tenant and service ids are required"}
	}

	now := e.now()
	if from.IsZero() {
		from = now
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, e.searchDays)
	}
	if !to.After(from) {
		return nil, &booking.Error{Kind: booking.KindSchedulingError, Op: "find slots", Message: "search window end must be after start", TenantID: tenantID}
	}

	preferred, err := parsePreferredTimes(opts.PreferredTimes)
	if err != nil {
		return nil, err
	}
	step := opts.Step
	if step <= 0 {
		step = e.defaultStep
	}

	svc, err := e.catalog.GetService(ctx, tenantID, serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, &booking.Error{Kind: booking.KindServiceUnavailable, Op: "find slots", Message: "service not found", TenantID: tenantID, ServiceID: serviceID, Err: err}
		}
		return nil, fmt.Errorf("availability: load service: %w", err)
	}
	if !svc.IsActive {
		return nil, &booking.Error{Kind: booking.KindServiceUnavailable, Op: "find slots", Message: fmt.Sprintf("service %q is not active", svc.Name), TenantID: tenantID, ServiceID: serviceID}
	}

	schedule, err := e.hours.ListBusinessHours(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("availability: load business hours: %w", err)
	}
	if len(schedule) == 0 {
		return nil, &booking.Error{Kind: booking.KindSchedulingMisconfigured, Op: "find slots", Message: "no business hours configured for tenant", TenantID: tenantID}
	}

	tz := opts.Timezone
	if tz == "" {
		tz = e.defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &booking.Error{Kind: booking.KindSchedulingError, Op: "find slots", Message: fmt.Sprintf("unknown timezone %q", tz), TenantID: tenantID, Err: err}
	}

	// Bookability is bounded by the advance window, so there is no point
	// walking days past it.
	minStart := now.Add(time.Duration(svc.MinAdvanceHours) * time.Hour)
	maxStart := now.AddDate(0, 0, svc.MaxAdvanceDays)
	if to.After(maxStart.Add(24 * time.Hour)) {
		to = maxStart.Add(24 * time.Hour)
	}

	var busy []booking.BusyInterval
	if opts.StaffID != nil || e.store.Policy() == booking.PolicyShared {
		busy, err = e.store.ListBusyWindows(ctx, tenantID, opts.StaffID, from, to)
		if err != nil {
			return nil, fmt.Errorf("availability: load booked capacity: %w", err)
		}
	}

	duration := svc.EffectiveDuration()
	var slots []Slot
	last := calendar.DateOf(to.In(loc))
	for day := calendar.DateOf(from.In(loc)); !day.After(last); day = day.AddDays(1) {
		if e.cal.IsWeekend(day) {
			continue
		}
		hrs := schedule.ForWeekday(day.Weekday())
		if hrs == nil || !hrs.IsOpen {
			continue
		}
		if _, observed := e.cal.ObservedHoliday(day, hrs.ObservesPublicHolidays, hrs.ObservesReligiousHolidays); observed {
			continue
		}

		open, brk, err := hrs.Windows(day, loc)
		if err != nil {
			return nil, fmt.Errorf("availability: resolve business hours for %s: %w", day, err)
		}
		if hrs.ObservesReligiousHolidays && calendar.InRamadan(day) {
			open.Start, open.End = calendar.RamadanHours(open.Start, open.End, nil)
		}

		candidates, err := calendar.EnumerateSlots(open.Start, open.End, duration, step, brk)
		if err != nil {
			return nil, fmt.Errorf("availability: enumerate slots for %s: %w", day, err)
		}
		for _, w := range candidates {
			if w.Start.Before(from) || !w.Start.Before(to) {
				continue
			}
			if w.Start.Before(minStart) || w.Start.After(maxStart) {
				continue
			}
			if overlapsBusy(w, busy) {
				continue
			}
			slots = append(slots, Slot{ServiceID: serviceID, StaffID: opts.StaffID, Window: w})
		}
	}

	sortSlots(slots)
	if len(preferred) > 0 {
		sortByPreference(slots, preferred, loc)
	}

	e.logger.Info("slot search completed",
		"tenant_id", tenantID,
		"service_id", serviceID,
		"from", from,
		"to", to,
		"slots", len(slots),
	)
	return slots, nil
}

func overlapsBusy(w calendar.Window, busy []booking.BusyInterval) bool {
	for _, b := range busy {
		if w.Overlaps(b.Window) {
			return true
		}
	}
	return false
}

func sortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].Window.Start.Equal(slots[j].Window.Start) {
			return slots[i].Window.Start.Before(slots[j].Window.Start)
		}
		return staffKey(slots[i].StaffID) < staffKey(slots[j].StaffID)
	})
}

func staffKey(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// clockMinutes is a wall-clock time of day in minutes since midnight.
type clockMinutes int

func parsePreferredTimes(values []string) ([]clockMinutes, error) {
	var out []clockMinutes
	for _, v := range values {
		t, err := time.Parse("15:04", v)
		if err != nil {
			return nil, &booking.Error{Kind: booking.KindSchedulingError, Op: "find slots", Message: fmt.Sprintf("invalid preferred time %q", v), Err: err}
		}
		out = append(out, clockMinutes(t.Hour()*60+t.Minute()))
	}
	return out, nil
}

// sortByPreference re-orders slots by absolute distance from the nearest
// preferred wall-clock time, keeping the chronological order on ties.
func sortByPreference(slots []Slot, preferred []clockMinutes, loc *time.Location) {
	distance := func(s Slot) int {
		local := s.Window.Start.In(loc)
		clock := clockMinutes(local.Hour()*60 + local.Minute())
		best := -1
		for _, p := range preferred {
			d := int(clock - p)
			if d < 0 {
				d = -d
			}
			if best < 0 || d < best {
				best = d
			}
		}
		return best
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return distance(slots[i]) < distance(slots[j])
	})
}

func searchOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case booking.IsKind(err, booking.KindServiceUnavailable),
		booking.IsKind(err, booking.KindSchedulingMisconfigured),
		booking.IsKind(err, booking.KindSchedulingError):
		return "rejected"
	default:
		return "error"
	}
}
