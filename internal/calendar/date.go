// Package calendar provides the pure date/time primitives the scheduling
// core is built on: civil dates, half-open time windows, timezone
// conversion, Nigerian holiday data, and slot enumeration.
package calendar

import (
	"fmt"
	"time"
)

// Date is a civil calendar day with no time-of-day or location attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight of the date in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// AddYears returns the same month/day with the year advanced by n.
func (d Date) AddYears(n int) Date {
	return DateOf(time.Date(d.Year+n, d.Month, d.Day, 0, 0, 0, 0, time.UTC))
}

// Weekday returns the day of week.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Window is a half-open [Start, End) time interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// ToLocal converts a UTC instant to the named timezone.
func ToLocal(utc time.Time, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: load location %q: %w", tz, err)
	}
	return utc.In(loc), nil
}

// ToUTC converts an instant (interpreted in the named timezone if it has no
// location information beyond UTC) back to UTC.
func ToUTC(local time.Time, tz string) (time.Time, error) {
	if _, err := time.LoadLocation(tz); err != nil {
		return time.Time{}, fmt.Errorf("calendar: load location %q: %w", tz, err)
	}
	return local.UTC(), nil
}

// At combines a civil date with a wall-clock time in the given location.
func At(d Date, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}
