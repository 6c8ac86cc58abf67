package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/naijabook/platform/internal/calendar"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending     Status = "pending"
	StatusConfirmed   Status = "confirmed"
	StatusCheckedIn   Status = "checked_in"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "no_show"
	StatusRescheduled Status = "rescheduled"
)

// transitions is the single source of truth for which status changes are
// legal. Terminal statuses have no outgoing edges. A rescheduled appointment
// stays live (it still occupies its slot) until it is confirmed, cancelled,
// marked no-show, or moved again.
var transitions = map[Status][]Status{
	StatusPending:     {StatusConfirmed, StatusCancelled, StatusNoShow, StatusRescheduled},
	StatusConfirmed:   {StatusCheckedIn, StatusCancelled, StatusNoShow, StatusRescheduled},
	StatusCheckedIn:   {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress:  {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusRescheduled: {StatusConfirmed, StatusCancelled, StatusNoShow, StatusRescheduled},
	StatusCompleted:   nil,
	StatusCancelled:   nil,
	StatusNoShow:      nil,
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveStatuses lists the statuses that occupy calendar capacity. Anything
// here participates in conflict detection; terminal statuses free the slot.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress, StatusRescheduled}
}

// ActiveStatusStrings is ActiveStatuses as plain strings for SQL binding.
func ActiveStatusStrings() []string {
	active := ActiveStatuses()
	out := make([]string, len(active))
	for i, s := range active {
		out[i] = string(s)
	}
	return out
}

// RecurrenceType selects how a recurring series advances between occurrences.
type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

// Valid reports whether r is a known recurrence type.
func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// PaymentStatus tracks the deposit or full payment attached to a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// BookingSource records which channel created the appointment.
type BookingSource string

const (
	SourceOnline BookingSource = "online"
	SourcePhone  BookingSource = "phone"
	SourceWalkIn BookingSource = "walk_in"
	SourceAdmin  BookingSource = "admin"
	SourceWidget BookingSource = "widget"
)

// Customer is the contact snapshot captured at booking time. NIN and BVN are
// optional identity fields some tenants collect for high-value bookings.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	NIN   string `json:"nin,omitempty"`
	BVN   string `json:"bvn,omitempty"`
}

// Appointment is a booked occupancy of staff (or shared tenant) capacity.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	ServiceID uuid.UUID `json:"service_id"`
	// StaffID is nil when the booking is unassigned and draws on the
	// tenant's shared capacity.
	StaffID *uuid.UUID `json:"staff_id,omitempty"`

	Customer Customer `json:"customer"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Timezone  string    `json:"timezone"`

	Status           Status `json:"status"`
	BookingReference string `json:"booking_reference"`

	PaymentRequired      bool          `json:"payment_required"`
	PaymentAmountKobo    int64         `json:"payment_amount_kobo"`
	PaymentStatus        PaymentStatus `json:"payment_status"`
	PaymentTransactionID string        `json:"payment_transaction_id,omitempty"`

	Notes           string        `json:"notes,omitempty"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	InternalNotes   string        `json:"internal_notes,omitempty"`
	Source          BookingSource `json:"booking_source"`

	RecurrenceType      RecurrenceType `json:"recurrence_type"`
	RecurrenceInterval  int            `json:"recurrence_interval"`
	RecurrenceEndDate   *time.Time     `json:"recurrence_end_date,omitempty"`
	ParentAppointmentID *uuid.UUID     `json:"parent_appointment_id,omitempty"`

	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CancelReason   string     `json:"cancel_reason,omitempty"`
	CancelledBy    string     `json:"cancelled_by,omitempty"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`
	ServiceStartAt *time.Time `json:"service_started_at,omitempty"`
	ServiceEndAt   *time.Time `json:"service_completed_at,omitempty"`

	Rating   *int32 `json:"rating,omitempty"`
	Feedback string `json:"feedback,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Window returns the appointment's occupancy as a half-open interval.
func (a *Appointment) Window() calendar.Window {
	return calendar.Window{Start: a.StartTime, End: a.EndTime}
}

// Unassigned reports whether the appointment has no staff member attached.
func (a *Appointment) Unassigned() bool {
	return a.StaffID == nil
}

// Location resolves the appointment's timezone, falling back to UTC when the
// stored name does not load.
func (a *Appointment) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}
