package booking

import (
	"github.com/naijabook/platform/internal/events"
)

func createdEvent(a *Appointment, serviceName string) events.AppointmentCreatedV1 {
	return events.AppointmentCreatedV1{
		AppointmentID:     a.ID,
		TenantID:          a.TenantID,
		ServiceID:         a.ServiceID,
		ServiceName:       serviceName,
		StaffID:           a.StaffID,
		BookingReference:  a.BookingReference,
		Status:            string(a.Status),
		CustomerName:      a.Customer.Name,
		CustomerPhone:     a.Customer.Phone,
		CustomerEmail:     a.Customer.Email,
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		Timezone:          a.Timezone,
		PaymentRequired:   a.PaymentRequired,
		PaymentAmountKobo: a.PaymentAmountKobo,
		Source:            string(a.Source),
		CreatedAt:         a.CreatedAt,
	}
}

func confirmedEvent(a *Appointment) events.AppointmentConfirmedV1 {
	return events.AppointmentConfirmedV1{
		AppointmentID:    a.ID,
		TenantID:         a.TenantID,
		BookingReference: a.BookingReference,
		CustomerName:     a.Customer.Name,
		CustomerPhone:    a.Customer.Phone,
		CustomerEmail:    a.Customer.Email,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		Timezone:         a.Timezone,
		ConfirmedAt:      a.UpdatedAt,
	}
}

func rescheduledEvent(prior, updated *Appointment, serviceName string) events.AppointmentRescheduledV1 {
	return events.AppointmentRescheduledV1{
		AppointmentID:    updated.ID,
		TenantID:         updated.TenantID,
		ServiceID:        updated.ServiceID,
		ServiceName:      serviceName,
		StaffID:          updated.StaffID,
		BookingReference: updated.BookingReference,
		CustomerName:     updated.Customer.Name,
		CustomerPhone:    updated.Customer.Phone,
		CustomerEmail:    updated.Customer.Email,
		PreviousStart:    prior.StartTime,
		PreviousEnd:      prior.EndTime,
		StartTime:        updated.StartTime,
		EndTime:          updated.EndTime,
		Timezone:         updated.Timezone,
		RescheduledAt:    updated.UpdatedAt,
	}
}

func cancelledEvent(a *Appointment) events.AppointmentCancelledV1 {
	cancelledAt := a.UpdatedAt
	if a.CancelledAt != nil {
		cancelledAt = *a.CancelledAt
	}
	return events.AppointmentCancelledV1{
		AppointmentID:    a.ID,
		TenantID:         a.TenantID,
		ServiceID:        a.ServiceID,
		BookingReference: a.BookingReference,
		CustomerName:     a.Customer.Name,
		CustomerPhone:    a.Customer.Phone,
		CustomerEmail:    a.Customer.Email,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		Timezone:         a.Timezone,
		Reason:           a.CancelReason,
		CancelledBy:      a.CancelledBy,
		CancelledAt:      cancelledAt,
	}
}

func completedEvent(a *Appointment) events.AppointmentCompletedV1 {
	completedAt := a.UpdatedAt
	if a.ServiceEndAt != nil {
		completedAt = *a.ServiceEndAt
	}
	return events.AppointmentCompletedV1{
		AppointmentID:    a.ID,
		TenantID:         a.TenantID,
		ServiceID:        a.ServiceID,
		BookingReference: a.BookingReference,
		CustomerName:     a.Customer.Name,
		CustomerPhone:    a.Customer.Phone,
		CustomerEmail:    a.Customer.Email,
		CompletedAt:      completedAt,
	}
}

func noShowEvent(a *Appointment) events.AppointmentNoShowV1 {
	return events.AppointmentNoShowV1{
		AppointmentID:    a.ID,
		TenantID:         a.TenantID,
		BookingReference: a.BookingReference,
		CustomerName:     a.Customer.Name,
		CustomerPhone:    a.Customer.Phone,
		StartTime:        a.StartTime,
		MarkedAt:         a.UpdatedAt,
	}
}

func paymentConfirmedEvent(a *Appointment) events.PaymentConfirmedV1 {
	return events.PaymentConfirmedV1{
		AppointmentID:    a.ID,
		TenantID:         a.TenantID,
		BookingReference: a.BookingReference,
		AmountKobo:       a.PaymentAmountKobo,
		TransactionID:    a.PaymentTransactionID,
		StatusAfter:      string(a.Status),
		ConfirmedAt:      a.UpdatedAt,
	}
}
