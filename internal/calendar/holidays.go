package calendar

import "time"

// Holiday is a named non-working day. Religious marks variable-date holidays
// derived from the lunar calendar, which tenants may opt out of observing.
type Holiday struct {
	Name      string
	Religious bool
}

// HolidayProvider supplies the holiday table for a year. Implementations
// must be safe for concurrent use; the default Nigerian provider is pure
// data and needs no synchronization.
type HolidayProvider interface {
	HolidaysForYear(year int) map[Date]Holiday
}

// NigerianHolidays is the default provider: the six fixed statutory
// holidays plus an approximate Eid el-Fitr derived from the Ramadan window.
// Lunar dates shift against the civil calendar, so the religious entries
// are estimates, not gazetted dates.
type NigerianHolidays struct{}

// HolidaysForYear returns the Nigerian holiday table for the year.
func (NigerianHolidays) HolidaysForYear(year int) map[Date]Holiday {
	table := map[Date]Holiday{
		{year, time.January, 1}:   {Name: "New Year's Day"},
		{year, time.May, 1}:       {Name: "Workers' Day"},
		{year, time.June, 12}:     {Name: "Democracy Day"},
		{year, time.October, 1}:   {Name: "Independence Day"},
		{year, time.December, 25}: {Name: "Christmas Day"},
		{year, time.December, 26}: {Name: "Boxing Day"},
	}

	if _, end, ok := RamadanWindow(year); ok {
		table[end.AddDays(1)] = Holiday{Name: "Id el Fitr", Religious: true}
		table[end.AddDays(2)] = Holiday{Name: "Id el Fitr Holiday", Religious: true}
	}

	return table
}

// Ramadan anchor: 2024-03-11 through 2024-04-09. The window lands about 11
// days earlier against the civil calendar each following year.
const ramadanAnchorYear = 2024

// RamadanWindow returns the approximate Ramadan start and end dates for a
// year. ok is false when the shifted window no longer falls inside the
// requested year, which happens once the drift accumulates past a quarter.
func RamadanWindow(year int) (start, end Date, ok bool) {
	shift := (year - ramadanAnchorYear) * -11
	start = Date{year, time.March, 11}.AddDays(shift)
	end = Date{year, time.April, 9}.AddDays(shift)
	if start.Year != year && end.Year != year {
		return Date{}, Date{}, false
	}
	return start, end, true
}

// InRamadan reports whether the date falls in the approximate Ramadan
// window of its own year.
func InRamadan(d Date) bool {
	start, end, ok := RamadanWindow(d.Year)
	if !ok {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

// RamadanHours narrows regular opening hours during Ramadan: one hour later
// open and one hour earlier close, unless the tenant configured an explicit
// override window.
func RamadanHours(open, close time.Time, override *Window) (time.Time, time.Time) {
	if override != nil {
		return override.Start, override.End
	}
	return open.Add(time.Hour), close.Add(-time.Hour)
}

// BusinessCalendar decides which days are workable given a weekend
// convention and a holiday provider.
type BusinessCalendar struct {
	Weekend  []time.Weekday
	Holidays HolidayProvider
}

// DefaultBusinessCalendar uses the Nigerian weekend (Saturday/Sunday) and
// holiday table.
func DefaultBusinessCalendar() BusinessCalendar {
	return BusinessCalendar{
		Weekend:  []time.Weekday{time.Saturday, time.Sunday},
		Holidays: NigerianHolidays{},
	}
}

// IsWeekend reports whether the date falls on a configured weekend day.
func (c BusinessCalendar) IsWeekend(d Date) bool {
	wd := d.Weekday()
	for _, w := range c.Weekend {
		if wd == w {
			return true
		}
	}
	return false
}

// HolidayOn returns the holiday on the date, if any.
func (c BusinessCalendar) HolidayOn(d Date) (Holiday, bool) {
	if c.Holidays == nil {
		return Holiday{}, false
	}
	h, ok := c.Holidays.HolidaysForYear(d.Year)[d]
	return h, ok
}

// ObservedHoliday returns the holiday on the date when the caller's
// observance flags cover its kind.
func (c BusinessCalendar) ObservedHoliday(d Date, public, religious bool) (Holiday, bool) {
	h, ok := c.HolidayOn(d)
	if !ok {
		return Holiday{}, false
	}
	if h.Religious && !religious {
		return Holiday{}, false
	}
	if !h.Religious && !public {
		return Holiday{}, false
	}
	return h, true
}

// IsBusinessDay reports whether the date is neither a weekend day nor a
// holiday of any kind.
func (c BusinessCalendar) IsBusinessDay(d Date) bool {
	if c.IsWeekend(d) {
		return false
	}
	_, holiday := c.HolidayOn(d)
	return !holiday
}

// NextBusinessDay returns the first business day strictly after the date.
func (c BusinessCalendar) NextBusinessDay(d Date) Date {
	next := d.AddDays(1)
	for !c.IsBusinessDay(next) {
		next = next.AddDays(1)
	}
	return next
}
