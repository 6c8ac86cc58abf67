package booking

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKindUnwrapsChains(t *testing.T) {
	conflict := &Error{Kind: KindAppointmentConflict, Op: "create", Message: "slot taken"}
	wrapped := fmt.Errorf("handler: %w", conflict)

	if !IsKind(wrapped, KindAppointmentConflict) {
		t.Error("expected conflict kind through wrapping")
	}
	if IsKind(wrapped, KindInvalidBookingTime) {
		t.Error("kind must not match a different classification")
	}
	if IsKind(nil, KindAppointmentConflict) {
		t.Error("nil error has no kind")
	}
	if IsKind(errors.New("plain"), KindAppointmentConflict) {
		t.Error("plain errors have no kind")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("constraint violated")
	err := &Error{Kind: KindAppointmentConflict, Op: "create", Message: "slot taken", Err: cause}

	if got := err.Error(); got != "booking: create: slot taken: constraint violated" {
		t.Errorf("unexpected message %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("expected unwrap to reach the cause")
	}

	bare := &Error{Kind: KindSchedulingError, Op: "cancel"}
	if got := bare.Error(); got != "booking: cancel: scheduling_error" {
		t.Errorf("unexpected fallback message %q", got)
	}
}

func TestSkippableInSeries(t *testing.T) {
	skippable := []error{
		&Error{Kind: KindAppointmentConflict},
		&Error{Kind: KindInvalidBookingTime},
	}
	for _, err := range skippable {
		if !SkippableInSeries(err) {
			t.Errorf("expected %v to be skippable", err)
		}
	}

	fatal := []error{
		&Error{Kind: KindSchedulingMisconfigured},
		&Error{Kind: KindServiceUnavailable},
		errors.New("db down"),
		nil,
	}
	for _, err := range fatal {
		if SkippableInSeries(err) {
			t.Errorf("expected %v to abort the series", err)
		}
	}
}
