package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/naijabook/platform/internal/calendar"
)

func strptr(s string) *string { return &s }

func TestServiceValidate(t *testing.T) {
	valid := Service{
		TenantID:        uuid.New(),
		Name:            "Deep Tissue Massage",
		DurationMinutes: 60,
		MinAdvanceHours: 1,
		MaxAdvanceDays:  30,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid service rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Service)
	}{
		{"missing tenant", func(s *Service) { s.TenantID = uuid.Nil }},
		{"missing name", func(s *Service) { s.Name = "" }},
		{"zero duration", func(s *Service) { s.DurationMinutes = 0 }},
		{"negative duration", func(s *Service) { s.DurationMinutes = -15 }},
		{"negative buffer", func(s *Service) { s.BufferAfterMinutes = -5 }},
		{"zero max advance", func(s *Service) { s.MaxAdvanceDays = 0 }},
		{"negative price", func(s *Service) { s.PriceKobo = -100 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := valid
			tc.mutate(&svc)
			if err := svc.Validate(); !errors.Is(err, ErrInvalidService) {
				t.Errorf("expected ErrInvalidService, got %v", err)
			}
		})
	}
}

func TestServiceEffectiveDuration(t *testing.T) {
	svc := Service{DurationMinutes: 45, BufferBeforeMinutes: 10, BufferAfterMinutes: 5}
	if got := svc.EffectiveDuration(); got != 60*time.Minute {
		t.Errorf("expected 60m, got %v", got)
	}
}

func TestBusinessHoursValidate(t *testing.T) {
	valid := BusinessHours{
		TenantID:  uuid.New(),
		DayOfWeek: time.Monday,
		IsOpen:    true,
		OpenTime:  "08:00",
		CloseTime: "17:00",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid hours rejected: %v", err)
	}

	closed := BusinessHours{TenantID: uuid.New(), DayOfWeek: time.Sunday}
	if err := closed.Validate(); err != nil {
		t.Fatalf("closed day should not need clock values: %v", err)
	}

	badClock := valid
	badClock.OpenTime = "8am"
	if err := badClock.Validate(); !errors.Is(err, ErrInvalidClockValue) {
		t.Errorf("expected ErrInvalidClockValue, got %v", err)
	}

	inverted := valid
	inverted.OpenTime = "17:00"
	inverted.CloseTime = "08:00"
	if err := inverted.Validate(); !errors.Is(err, ErrInvalidHours) {
		t.Errorf("expected ErrInvalidHours for inverted window, got %v", err)
	}

	halfBreak := valid
	halfBreak.BreakStart = strptr("12:00")
	if err := halfBreak.Validate(); !errors.Is(err, ErrInvalidHours) {
		t.Errorf("expected ErrInvalidHours for dangling break, got %v", err)
	}

	badDay := valid
	badDay.DayOfWeek = time.Weekday(9)
	if err := badDay.Validate(); !errors.Is(err, ErrInvalidHours) {
		t.Errorf("expected ErrInvalidHours for weekday 9, got %v", err)
	}
}

func TestBusinessHoursWindows(t *testing.T) {
	h := BusinessHours{
		TenantID:   uuid.New(),
		DayOfWeek:  time.Monday,
		IsOpen:     true,
		OpenTime:   "09:00",
		CloseTime:  "17:30",
		BreakStart: strptr("13:00"),
		BreakEnd:   strptr("14:00"),
	}

	day := calendar.Date{Year: 2024, Month: time.June, Day: 10}
	loc, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	open, brk, err := h.Windows(day, loc)
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if open.Start.Hour() != 9 || open.End.Hour() != 17 || open.End.Minute() != 30 {
		t.Errorf("open window wrong: %v..%v", open.Start, open.End)
	}
	if open.Start.Location().String() != "Africa/Lagos" {
		t.Errorf("window should carry the tenant location, got %s", open.Start.Location())
	}
	if brk == nil || brk.Start.Hour() != 13 || brk.End.Hour() != 14 {
		t.Errorf("break window wrong: %+v", brk)
	}

	h.IsOpen = false
	open, brk, err = h.Windows(day, loc)
	if err != nil || brk != nil || !open.Start.IsZero() {
		t.Errorf("closed day should yield zero windows, got %v %v %v", open, brk, err)
	}
}

func TestWeekScheduleForWeekday(t *testing.T) {
	week := WeekSchedule{
		{DayOfWeek: time.Monday, IsOpen: true},
		{DayOfWeek: time.Tuesday, IsOpen: false},
	}
	if got := week.ForWeekday(time.Monday); got == nil || !got.IsOpen {
		t.Error("expected open Monday row")
	}
	if got := week.ForWeekday(time.Friday); got != nil {
		t.Error("expected nil for missing weekday")
	}
}
