// Package catalog holds the bookable offerings of a tenant: service
// definitions and the weekly business-hours grid the availability engine
// reads on every slot query.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/naijabook/platform/internal/calendar"
)

var (
	ErrServiceNotFound   = errors.New("catalog: service not found")
	ErrInvalidService    = errors.New("catalog: invalid service definition")
	ErrInvalidHours      = errors.New("catalog: invalid business hours")
	ErrInvalidClockValue = errors.New("catalog: clock values must be HH:MM")
)

// Service defines a bookable offering and its scheduling parameters.
// Services are never deleted; they are deactivated so historical
// appointments keep a valid reference.
type Service struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`

	DurationMinutes     int `json:"duration_minutes"`
	BufferBeforeMinutes int `json:"buffer_before_minutes"`
	BufferAfterMinutes  int `json:"buffer_after_minutes"`

	MinAdvanceHours       int `json:"min_advance_booking_hours"`
	MaxAdvanceDays        int `json:"max_advance_booking_days"`
	MaxConcurrentBookings int `json:"max_concurrent_bookings"`

	PriceKobo int64  `json:"price_kobo"`
	Currency  string `json:"currency"`
	// PaymentRequired holds new bookings in pending until a deposit or full
	// payment for PriceKobo settles.
	PaymentRequired bool `json:"payment_required"`

	IsActive         bool `json:"is_active"`
	IsOnlineBookable bool `json:"is_online_bookable"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveDuration is the calendar footprint of one booking: buffers plus
// the core service duration.
func (s *Service) EffectiveDuration() time.Duration {
	total := s.BufferBeforeMinutes + s.DurationMinutes + s.BufferAfterMinutes
	return time.Duration(total) * time.Minute
}

// Validate checks the fields a tenant admin controls.
func (s *Service) Validate() error {
	if s.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant id required", ErrInvalidService)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidService)
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidService)
	}
	if s.BufferBeforeMinutes < 0 || s.BufferAfterMinutes < 0 {
		return fmt.Errorf("%w: buffers cannot be negative", ErrInvalidService)
	}
	if s.MinAdvanceHours < 0 || s.MaxAdvanceDays <= 0 {
		return fmt.Errorf("%w: advance-booking window out of range", ErrInvalidService)
	}
	if s.PriceKobo < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidService)
	}
	return nil
}

// BusinessHours is the operating window for one weekday. At most one row
// exists per (tenant, weekday); the store upserts on that pair.
type BusinessHours struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`

	DayOfWeek time.Weekday `json:"day_of_week"` // 0=Sunday .. 6=Saturday

	IsOpen    bool   `json:"is_open"`
	OpenTime  string `json:"open_time,omitempty"`  // "15:04" wall clock
	CloseTime string `json:"close_time,omitempty"` // "15:04" wall clock

	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`

	ObservesPublicHolidays    bool `json:"observes_public_holidays"`
	ObservesReligiousHolidays bool `json:"observes_religious_holidays"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks weekday range and clock formats. A closed day needs no
// clock values.
func (h *BusinessHours) Validate() error {
	if h.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant id required", ErrInvalidHours)
	}
	if h.DayOfWeek < time.Sunday || h.DayOfWeek > time.Saturday {
		return fmt.Errorf("%w: day of week out of range", ErrInvalidHours)
	}
	if !h.IsOpen {
		return nil
	}
	open, err := parseClock(h.OpenTime)
	if err != nil {
		return err
	}
	close, err := parseClock(h.CloseTime)
	if err != nil {
		return err
	}
	if !open.Before(close) {
		return fmt.Errorf("%w: close must be after open", ErrInvalidHours)
	}
	if (h.BreakStart == nil) != (h.BreakEnd == nil) {
		return fmt.Errorf("%w: break needs both start and end", ErrInvalidHours)
	}
	if h.BreakStart != nil {
		bs, err := parseClock(*h.BreakStart)
		if err != nil {
			return err
		}
		be, err := parseClock(*h.BreakEnd)
		if err != nil {
			return err
		}
		if !bs.Before(be) {
			return fmt.Errorf("%w: break end must be after break start", ErrInvalidHours)
		}
	}
	return nil
}

// Windows resolves the row's clock strings into concrete open and break
// windows on the given civil day in the given location.
func (h *BusinessHours) Windows(d calendar.Date, loc *time.Location) (open calendar.Window, brk *calendar.Window, err error) {
	if !h.IsOpen {
		return calendar.Window{}, nil, nil
	}
	openAt, err := clockAt(h.OpenTime, d, loc)
	if err != nil {
		return calendar.Window{}, nil, err
	}
	closeAt, err := clockAt(h.CloseTime, d, loc)
	if err != nil {
		return calendar.Window{}, nil, err
	}
	open = calendar.Window{Start: openAt, End: closeAt}

	if h.BreakStart != nil && h.BreakEnd != nil {
		bs, err := clockAt(*h.BreakStart, d, loc)
		if err != nil {
			return calendar.Window{}, nil, err
		}
		be, err := clockAt(*h.BreakEnd, d, loc)
		if err != nil {
			return calendar.Window{}, nil, err
		}
		brk = &calendar.Window{Start: bs, End: be}
	}
	return open, brk, nil
}

// WeekSchedule is a tenant's full business-hours grid.
type WeekSchedule []BusinessHours

// ForWeekday returns the row for the weekday, or nil when none exists.
func (w WeekSchedule) ForWeekday(day time.Weekday) *BusinessHours {
	for i := range w {
		if w[i].DayOfWeek == day {
			return &w[i]
		}
	}
	return nil
}

func parseClock(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClockValue, s)
	}
	return t, nil
}

func clockAt(s string, d calendar.Date, loc *time.Location) (time.Time, error) {
	t, err := parseClock(s)
	if err != nil {
		return time.Time{}, err
	}
	return calendar.At(d, t.Hour(), t.Minute(), loc), nil
}
