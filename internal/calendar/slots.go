package calendar

import (
	"errors"
	"time"
)

// DefaultSlotStep is the stepping used between candidate slot starts when a
// caller does not configure one.
const DefaultSlotStep = 15 * time.Minute

var ErrInvalidSlotParams = errors.New("calendar: slot duration and step must be positive")

// EnumerateSlots yields candidate slots of the given duration across
// [open, close) at a fixed step. A slot whose end would pass close is never
// produced, and slots overlapping the break window are skipped. close at or
// before open yields an empty result rather than an error; a break window
// outside the open hours has no effect.
func EnumerateSlots(open, close time.Time, duration, step time.Duration, brk *Window) ([]Window, error) {
	if duration <= 0 || step <= 0 {
		return nil, ErrInvalidSlotParams
	}

	var slots []Window
	for start := open; !start.Add(duration).After(close); start = start.Add(step) {
		slot := Window{Start: start, End: start.Add(duration)}
		if brk != nil && slot.Overlaps(*brk) {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
