package events

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentCreatedV1 announces a freshly booked appointment. It carries
// the customer contact snapshot and service name so notification and
// calendar-sync workers never have to call back into the platform.
type AppointmentCreatedV1 struct {
	AppointmentID     uuid.UUID  `json:"appointment_id"`
	TenantID          uuid.UUID  `json:"tenant_id"`
	ServiceID         uuid.UUID  `json:"service_id"`
	ServiceName       string     `json:"service_name,omitempty"`
	StaffID           *uuid.UUID `json:"staff_id,omitempty"`
	BookingReference  string     `json:"booking_reference"`
	Status            string     `json:"status"`
	CustomerName      string     `json:"customer_name"`
	CustomerPhone     string     `json:"customer_phone"`
	CustomerEmail     string     `json:"customer_email,omitempty"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	Timezone          string     `json:"timezone"`
	PaymentRequired   bool       `json:"payment_required"`
	PaymentAmountKobo int64      `json:"payment_amount_kobo,omitempty"`
	Source            string     `json:"booking_source,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (AppointmentCreatedV1) EventType() string {
	return "scheduling.appointment.created.v1"
}

// AppointmentConfirmedV1 signals that a pending or rescheduled booking was
// confirmed, either manually or by a successful payment.
type AppointmentConfirmedV1 struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	BookingReference string    `json:"booking_reference"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	CustomerEmail    string    `json:"customer_email,omitempty"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Timezone         string    `json:"timezone"`
	ConfirmedAt      time.Time `json:"confirmed_at"`
}

func (AppointmentConfirmedV1) EventType() string {
	return "scheduling.appointment.confirmed.v1"
}

// AppointmentRescheduledV1 carries both the prior and the new window so a
// sync worker can move the mirrored calendar entry.
type AppointmentRescheduledV1 struct {
	AppointmentID    uuid.UUID  `json:"appointment_id"`
	TenantID         uuid.UUID  `json:"tenant_id"`
	ServiceID        uuid.UUID  `json:"service_id"`
	ServiceName      string     `json:"service_name,omitempty"`
	StaffID          *uuid.UUID `json:"staff_id,omitempty"`
	BookingReference string     `json:"booking_reference"`
	CustomerName     string     `json:"customer_name"`
	CustomerPhone    string     `json:"customer_phone"`
	CustomerEmail    string     `json:"customer_email,omitempty"`
	PreviousStart    time.Time  `json:"previous_start"`
	PreviousEnd      time.Time  `json:"previous_end"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	Timezone         string     `json:"timezone"`
	RescheduledAt    time.Time  `json:"rescheduled_at"`
}

func (AppointmentRescheduledV1) EventType() string {
	return "scheduling.appointment.rescheduled.v1"
}

// AppointmentCancelledV1 signals a cancellation; the window is included so
// mirrored calendar entries can be removed without a lookup.
type AppointmentCancelledV1 struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	ServiceID        uuid.UUID `json:"service_id"`
	BookingReference string    `json:"booking_reference"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	CustomerEmail    string    `json:"customer_email,omitempty"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Timezone         string    `json:"timezone"`
	Reason           string    `json:"reason,omitempty"`
	CancelledBy      string    `json:"cancelled_by,omitempty"`
	CancelledAt      time.Time `json:"cancelled_at"`
}

func (AppointmentCancelledV1) EventType() string {
	return "scheduling.appointment.cancelled.v1"
}

// AppointmentCompletedV1 fires when service delivery finishes, feeding
// review-request and follow-up campaigns.
type AppointmentCompletedV1 struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	ServiceID        uuid.UUID `json:"service_id"`
	BookingReference string    `json:"booking_reference"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	CustomerEmail    string    `json:"customer_email,omitempty"`
	CompletedAt      time.Time `json:"completed_at"`
}

func (AppointmentCompletedV1) EventType() string {
	return "scheduling.appointment.completed.v1"
}

// AppointmentNoShowV1 records that the customer never arrived.
type AppointmentNoShowV1 struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	BookingReference string    `json:"booking_reference"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	StartTime        time.Time `json:"start_time"`
	MarkedAt         time.Time `json:"marked_at"`
}

func (AppointmentNoShowV1) EventType() string {
	return "scheduling.appointment.no_show.v1"
}

// PaymentConfirmedV1 records a settled deposit or full payment against a
// booking.
type PaymentConfirmedV1 struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	BookingReference string    `json:"booking_reference"`
	AmountKobo       int64     `json:"amount_kobo"`
	TransactionID    string    `json:"transaction_id,omitempty"`
	StatusAfter      string    `json:"status_after"`
	ConfirmedAt      time.Time `json:"confirmed_at"`
}

func (PaymentConfirmedV1) EventType() string {
	return "scheduling.appointment.payment_confirmed.v1"
}
