package calendar

import (
	"testing"
	"time"
)

func TestNigerianHolidays_FixedDates(t *testing.T) {
	table := NigerianHolidays{}.HolidaysForYear(2024)

	fixed := map[Date]string{
		{2024, time.January, 1}:   "New Year's Day",
		{2024, time.May, 1}:       "Workers' Day",
		{2024, time.June, 12}:     "Democracy Day",
		{2024, time.October, 1}:   "Independence Day",
		{2024, time.December, 25}: "Christmas Day",
		{2024, time.December, 26}: "Boxing Day",
	}
	for d, name := range fixed {
		h, ok := table[d]
		if !ok {
			t.Errorf("missing holiday on %s", d)
			continue
		}
		if h.Name != name {
			t.Errorf("holiday on %s: expected %q, got %q", d, name, h.Name)
		}
		if h.Religious {
			t.Errorf("%s should not be flagged religious", name)
		}
	}
}

func TestNigerianHolidays_EidFromRamadanWindow(t *testing.T) {
	table := NigerianHolidays{}.HolidaysForYear(2024)

	// Ramadan 2024 anchor ends April 9, so Eid falls on the 10th and 11th.
	eid1 := Date{2024, time.April, 10}
	eid2 := Date{2024, time.April, 11}

	for _, d := range []Date{eid1, eid2} {
		h, ok := table[d]
		if !ok {
			t.Fatalf("expected Eid holiday on %s", d)
		}
		if !h.Religious {
			t.Errorf("Eid on %s should be flagged religious", d)
		}
	}
}

func TestRamadanWindow_ShiftsEarlier(t *testing.T) {
	start24, end24, ok := RamadanWindow(2024)
	if !ok {
		t.Fatal("expected 2024 window")
	}
	if start24 != (Date{2024, time.March, 11}) || end24 != (Date{2024, time.April, 9}) {
		t.Errorf("2024 window wrong: %s..%s", start24, end24)
	}

	start25, _, ok := RamadanWindow(2025)
	if !ok {
		t.Fatal("expected 2025 window")
	}
	if start25 != (Date{2025, time.February, 28}) {
		t.Errorf("2025 start should shift 11 days earlier, got %s", start25)
	}

	if !InRamadan(Date{2024, time.March, 20}) {
		t.Error("2024-03-20 should be in Ramadan")
	}
	if InRamadan(Date{2024, time.June, 10}) {
		t.Error("2024-06-10 should not be in Ramadan")
	}
}

func TestRamadanHours(t *testing.T) {
	day := Date{2024, time.March, 20}
	open := At(day, 9, 0, time.UTC)
	close := At(day, 17, 0, time.UTC)

	adjOpen, adjClose := RamadanHours(open, close, nil)
	if adjOpen.Hour() != 10 || adjClose.Hour() != 16 {
		t.Errorf("default adjustment should be 10:00..16:00, got %d:00..%d:00", adjOpen.Hour(), adjClose.Hour())
	}

	override := &Window{Start: At(day, 7, 0, time.UTC), End: At(day, 14, 0, time.UTC)}
	adjOpen, adjClose = RamadanHours(open, close, override)
	if adjOpen.Hour() != 7 || adjClose.Hour() != 14 {
		t.Errorf("override should win, got %d:00..%d:00", adjOpen.Hour(), adjClose.Hour())
	}
}

func TestBusinessCalendar(t *testing.T) {
	cal := DefaultBusinessCalendar()

	saturday := Date{2024, time.June, 8}
	if cal.IsBusinessDay(saturday) {
		t.Error("Saturday should not be a business day")
	}

	independence := Date{2024, time.October, 1} // Tuesday
	if cal.IsBusinessDay(independence) {
		t.Error("Independence Day should not be a business day")
	}

	monday := Date{2024, time.June, 10}
	if !cal.IsBusinessDay(monday) {
		t.Error("ordinary Monday should be a business day")
	}

	// Friday before a weekend: next business day is Monday.
	friday := Date{2024, time.June, 7}
	if next := cal.NextBusinessDay(friday); next != monday {
		t.Errorf("expected next business day %s, got %s", monday, next)
	}
}

func TestObservedHoliday_Flags(t *testing.T) {
	cal := DefaultBusinessCalendar()

	eid := Date{2024, time.April, 10}
	if _, ok := cal.ObservedHoliday(eid, true, false); ok {
		t.Error("religious holiday should be ignored when not observed")
	}
	if _, ok := cal.ObservedHoliday(eid, false, true); !ok {
		t.Error("religious holiday should apply when observed")
	}

	christmas := Date{2024, time.December, 25}
	if _, ok := cal.ObservedHoliday(christmas, false, true); ok {
		t.Error("public holiday should be ignored when not observed")
	}
	if _, ok := cal.ObservedHoliday(christmas, true, false); !ok {
		t.Error("public holiday should apply when observed")
	}
}

func TestDateHelpers(t *testing.T) {
	d := Date{2024, time.January, 31}
	if got := d.AddDays(1); got != (Date{2024, time.February, 1}) {
		t.Errorf("AddDays should roll the month, got %s", got)
	}
	if got := d.AddYears(1); got != (Date{2025, time.January, 31}) {
		t.Errorf("AddYears should keep month/day, got %s", got)
	}
	if d.Weekday() != time.Wednesday {
		t.Errorf("2024-01-31 is a Wednesday, got %s", d.Weekday())
	}
	if !d.Before(Date{2024, time.February, 1}) || d.Before(Date{2024, time.January, 1}) {
		t.Error("Before comparisons wrong")
	}
}
