package calendar

import (
	"errors"
	"testing"
	"time"
)

func mustLagos(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Fatalf("load Africa/Lagos: %v", err)
	}
	return loc
}

func TestEnumerateSlots_FullDay(t *testing.T) {
	day := Date{2024, time.June, 10} // Monday
	open := At(day, 8, 0, time.UTC)
	close := At(day, 17, 0, time.UTC)

	slots, err := EnumerateSlots(open, close, 30*time.Minute, 15*time.Minute, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(slots) != 35 {
		t.Fatalf("expected 35 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(open) {
		t.Errorf("first slot should start at open, got %v", slots[0].Start)
	}
	last := slots[len(slots)-1]
	if last.Start.Hour() != 16 || last.Start.Minute() != 30 {
		t.Errorf("last slot should start 16:30, got %v", last.Start)
	}
	if !last.End.Equal(close) {
		t.Errorf("last slot should end exactly at close, got %v", last.End)
	}
	for _, s := range slots {
		if s.Start.Before(open) || s.End.After(close) {
			t.Errorf("slot %v..%v escapes open hours", s.Start, s.End)
		}
	}
}

func TestEnumerateSlots_SkipsBreakWindow(t *testing.T) {
	day := Date{2024, time.June, 10}
	open := At(day, 9, 0, time.UTC)
	close := At(day, 14, 0, time.UTC)
	brk := &Window{Start: At(day, 12, 0, time.UTC), End: At(day, 13, 0, time.UTC)}

	slots, err := EnumerateSlots(open, close, 30*time.Minute, 15*time.Minute, brk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range slots {
		if s.Overlaps(*brk) {
			t.Errorf("slot %v..%v overlaps break", s.Start, s.End)
		}
	}

	// 11:30 ends exactly at break start and must survive; 11:45 must not.
	var sawEdge, sawInside bool
	for _, s := range slots {
		if s.Start.Hour() == 11 && s.Start.Minute() == 30 {
			sawEdge = true
		}
		if s.Start.Hour() == 11 && s.Start.Minute() == 45 {
			sawInside = true
		}
	}
	if !sawEdge {
		t.Error("slot ending at break start should be kept")
	}
	if sawInside {
		t.Error("slot crossing into break should be dropped")
	}
}

func TestEnumerateSlots_BreakOutsideHoursIsNoop(t *testing.T) {
	day := Date{2024, time.June, 10}
	open := At(day, 9, 0, time.UTC)
	close := At(day, 12, 0, time.UTC)
	brk := &Window{Start: At(day, 18, 0, time.UTC), End: At(day, 19, 0, time.UTC)}

	withBreak, err := EnumerateSlots(open, close, 30*time.Minute, 15*time.Minute, brk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	without, err := EnumerateSlots(open, close, 30*time.Minute, 15*time.Minute, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(withBreak) != len(without) {
		t.Errorf("out-of-hours break changed slot count: %d vs %d", len(withBreak), len(without))
	}
}

func TestEnumerateSlots_ClosedOrInvalid(t *testing.T) {
	day := Date{2024, time.June, 10}
	open := At(day, 17, 0, time.UTC)
	close := At(day, 9, 0, time.UTC)

	slots, err := EnumerateSlots(open, close, 30*time.Minute, 15*time.Minute, nil)
	if err != nil {
		t.Fatalf("close before open should not error, got %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %d", len(slots))
	}

	if _, err := EnumerateSlots(close, open, 0, 15*time.Minute, nil); !errors.Is(err, ErrInvalidSlotParams) {
		t.Errorf("zero duration should be rejected, got %v", err)
	}
	if _, err := EnumerateSlots(close, open, 30*time.Minute, -time.Minute, nil); !errors.Is(err, ErrInvalidSlotParams) {
		t.Errorf("negative step should be rejected, got %v", err)
	}
}

func TestWindowOverlaps_HalfOpen(t *testing.T) {
	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	a := Window{Start: base, End: base.Add(30 * time.Minute)}

	touching := Window{Start: a.End, End: a.End.Add(30 * time.Minute)}
	if a.Overlaps(touching) {
		t.Error("back-to-back windows must not overlap")
	}

	inside := Window{Start: base.Add(10 * time.Minute), End: base.Add(20 * time.Minute)}
	if !a.Overlaps(inside) {
		t.Error("contained window must overlap")
	}

	crossing := Window{Start: base.Add(-10 * time.Minute), End: base.Add(10 * time.Minute)}
	if !a.Overlaps(crossing) {
		t.Error("crossing window must overlap")
	}
}

func TestToLocalAndBack(t *testing.T) {
	loc := mustLagos(t)

	utc := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	local, err := ToLocal(utc, "Africa/Lagos")
	if err != nil {
		t.Fatalf("ToLocal: %v", err)
	}
	// Lagos is UTC+1 year-round.
	if local.Hour() != 13 {
		t.Errorf("expected 13:00 in Lagos, got %d:00", local.Hour())
	}
	if local.Location().String() != loc.String() {
		t.Errorf("expected Africa/Lagos location, got %s", local.Location())
	}

	back, err := ToUTC(local, "Africa/Lagos")
	if err != nil {
		t.Fatalf("ToUTC: %v", err)
	}
	if !back.Equal(utc) {
		t.Errorf("round trip drifted: %v vs %v", back, utc)
	}

	if _, err := ToLocal(utc, "Mars/Olympus"); err == nil {
		t.Error("unknown zone should error")
	}
}
