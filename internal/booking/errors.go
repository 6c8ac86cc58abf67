package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrAppointmentNotFound is returned when no appointment matches the tenant
// and identifier (or reference) given.
var ErrAppointmentNotFound = errors.New("booking: appointment not found")

// Kind classifies scheduling failures so callers can react without string
// matching: offer alternative slots on a conflict, fix configuration on a
// misconfiguration, correct the request on a bad time.
type Kind string

const (
	KindServiceUnavailable      Kind = "service_unavailable"
	KindSchedulingMisconfigured Kind = "scheduling_misconfigured"
	KindInvalidBookingTime      Kind = "invalid_booking_time"
	KindAppointmentConflict     Kind = "appointment_conflict"
	KindInvalidStatusTransition Kind = "invalid_status_transition"
	KindSchedulingError         Kind = "scheduling_error"
)

// Error is the structured scheduling error. Fields are populated where they
// are known so a caller can render an actionable message ("this slot was
// just taken") instead of a bare failure.
type Error struct {
	Kind    Kind
	Op      string
	Message string

	TenantID             uuid.UUID
	ServiceID            uuid.UUID
	AppointmentID        uuid.UUID
	BookingReference     string
	RequestedStart       time.Time
	ConflictingReference string

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("booking: %s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("booking: %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is (or wraps) a scheduling Error of the kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

// SkippableInSeries reports whether a create failure is a per-date problem
// a recurring series may step over, as opposed to a systemic one that
// should abort the batch.
func SkippableInSeries(err error) bool {
	return IsKind(err, KindAppointmentConflict) || IsKind(err, KindInvalidBookingTime)
}
