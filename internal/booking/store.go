package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/naijabook/platform/internal/calendar"
	"github.com/naijabook/platform/internal/events"
)

// UnassignedPolicy controls how appointments without a staff member share
// the tenant's capacity.
type UnassignedPolicy string

const (
	// PolicyShared treats unassigned appointments as one shared resource:
	// any overlap between two unassigned bookings is a conflict.
	PolicyShared UnassignedPolicy = "shared"
	// PolicyUnlimited lets unassigned appointments overlap freely.
	PolicyUnlimited UnassignedPolicy = "unlimited"
)

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

// acquireTenantLock serializes unassigned bookings for one tenant within the
// surrounding transaction. Assigned bookings skip it; the exclusion
// constraint already covers per-staff races, but NULL staff ids never
// collide there.
const acquireTenantLock = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

const appointmentColumns = `
		id, tenant_id, service_id, staff_id,
		customer_name, customer_phone, COALESCE(customer_email, ''), COALESCE(customer_nin, ''), COALESCE(customer_bvn, ''),
		start_time, end_time, timezone,
		status, booking_reference,
		payment_required, payment_amount_kobo, payment_status, COALESCE(payment_transaction_id, ''),
		COALESCE(notes, ''), COALESCE(special_requests, ''), COALESCE(internal_notes, ''), booking_source,
		recurrence_type, recurrence_interval, recurrence_end_date, parent_appointment_id,
		cancelled_at, COALESCE(cancel_reason, ''), COALESCE(cancelled_by, ''),
		checked_in_at, service_started_at, service_completed_at,
		rating, COALESCE(feedback, ''),
		created_at, updated_at`

const insertAppointment = `
	INSERT INTO appointments (
		id, tenant_id, service_id, staff_id,
		customer_name, customer_phone, customer_email, customer_nin, customer_bvn,
		start_time, end_time, timezone,
		status, booking_reference,
		payment_required, payment_amount_kobo, payment_status, payment_transaction_id,
		notes, special_requests, internal_notes, booking_source,
		recurrence_type, recurrence_interval, recurrence_end_date, parent_appointment_id
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
		$10, $11, $12,
		$13, $14,
		$15, $16, $17, NULLIF($18, ''),
		NULLIF($19, ''), NULLIF($20, ''), NULLIF($21, ''), $22,
		$23, $24, $25, $26
	)
	RETURNING created_at, updated_at`

const conflictScanAssigned = `
	SELECT booking_reference
	FROM appointments
	WHERE tenant_id = $1
	  AND staff_id = $2
	  AND status = ANY($3)
	  AND start_time < $4
	  AND end_time > $5
	  AND ($6::uuid IS NULL OR id <> $6)
	ORDER BY start_time
	LIMIT 1`

const conflictScanUnassigned = `
	SELECT booking_reference
	FROM appointments
	WHERE tenant_id = $1
	  AND staff_id IS NULL
	  AND status = ANY($2)
	  AND start_time < $3
	  AND end_time > $4
	  AND ($5::uuid IS NULL OR id <> $5)
	ORDER BY start_time
	LIMIT 1`

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists appointments. Every write that changes occupancy runs in a
// transaction together with its outbox event, so downstream consumers see
// exactly the changes that committed.
type Store struct {
	db     DB
	policy UnassignedPolicy
}

func NewStore(db DB, policy UnassignedPolicy) *Store {
	if db == nil {
		panic("booking: pgx pool required")
	}
	if policy == "" {
		policy = PolicyShared
	}
	return &Store{db: db, policy: policy}
}

// Policy returns the configured unassigned-capacity policy.
func (s *Store) Policy() UnassignedPolicy {
	return s.policy
}

// Create books the appointment: it serializes shared capacity, scans for
// overlaps, inserts the row, and appends the created event, all in one
// transaction. A booking reference is assigned if the appointment has none;
// a reference collision triggers a single regeneration.
func (s *Store) Create(ctx context.Context, appt *Appointment, serviceName string) error {
	if appt == nil {
		return fmt.Errorf("booking: appointment required")
	}
	loc := appt.Location()
	for attempt := 0; attempt < 2; attempt++ {
		if appt.BookingReference == "" {
			ref, err := NewBookingReference(appt.TenantID, appt.StartTime.In(loc))
			if err != nil {
				return err
			}
			appt.BookingReference = ref
		}
		err := s.create(ctx, appt, serviceName)
		if err == nil {
			return nil
		}
		if isReferenceCollision(err) {
			appt.BookingReference = ""
			continue
		}
		return err
	}
	return &Error{
		Kind:      KindSchedulingError,
		Op:        "create",
		Message:   "could not allocate a unique booking reference",
		TenantID:  appt.TenantID,
		ServiceID: appt.ServiceID,
	}
}

func (s *Store) create(ctx context.Context, appt *Appointment, serviceName string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("booking: begin create: %w", err)
	}
	defer tx.Rollback(ctx)

	if appt.Unassigned() && s.policy == PolicyShared {
		if _, err := tx.Exec(ctx, acquireTenantLock, appt.TenantID.String()); err != nil {
			return fmt.Errorf("booking: acquire tenant slot lock: %w", err)
		}
	}

	ref, found, err := s.findConflict(ctx, tx, appt.TenantID, appt.StaffID, appt.StartTime, appt.EndTime, nil)
	if err != nil {
		return fmt.Errorf("booking: scan conflicts: %w", err)
	}
	if found {
		return &Error{
			Kind:                 KindAppointmentConflict,
			Op:                   "create",
			Message:              "requested time overlaps an existing appointment",
			TenantID:             appt.TenantID,
			ServiceID:            appt.ServiceID,
			RequestedStart:       appt.StartTime,
			ConflictingReference: ref,
		}
	}

	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	err = tx.QueryRow(ctx, insertAppointment,
		appt.ID, appt.TenantID, appt.ServiceID, appt.StaffID,
		appt.Customer.Name, appt.Customer.Phone, appt.Customer.Email, appt.Customer.NIN, appt.Customer.BVN,
		appt.StartTime, appt.EndTime, appt.Timezone,
		string(appt.Status), appt.BookingReference,
		appt.PaymentRequired, appt.PaymentAmountKobo, string(appt.PaymentStatus), appt.PaymentTransactionID,
		appt.Notes, appt.SpecialRequests, appt.InternalNotes, string(appt.Source),
		string(appt.RecurrenceType), appt.RecurrenceInterval, appt.RecurrenceEndDate, appt.ParentAppointmentID,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
			return &Error{
				Kind:           KindAppointmentConflict,
				Op:             "create",
				Message:        "slot was taken by a concurrent booking",
				TenantID:       appt.TenantID,
				ServiceID:      appt.ServiceID,
				RequestedStart: appt.StartTime,
				Err:            err,
			}
		}
		return fmt.Errorf("booking: insert appointment: %w", err)
	}

	if _, err := events.AppendCanonicalEvent(ctx, tx, appt.TenantID, appt.BookingReference, createdEvent(appt, serviceName)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("booking: commit create: %w", err)
	}
	return nil
}

func isReferenceCollision(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgUniqueViolation &&
		strings.Contains(pgErr.ConstraintName, "booking_reference")
}

// Reschedule moves the appointment to a new window. The row is locked first
// so the prior window in the emitted event is authoritative; the new window
// is scanned for conflicts excluding the appointment's own row.
func (s *Store) Reschedule(ctx context.Context, tenantID, id uuid.UUID, newStart, newEnd time.Time, serviceName string) (*Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking: begin reschedule: %w", err)
	}
	defer tx.Rollback(ctx)

	prior, err := getAppointmentForUpdate(ctx, tx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if prior.Status.Terminal() {
		return nil, &Error{
			Kind:             KindSchedulingError,
			Op:               "reschedule",
			Message:          fmt.Sprintf("cannot reschedule a %s appointment", prior.Status),
			TenantID:         tenantID,
			AppointmentID:    id,
			BookingReference: prior.BookingReference,
		}
	}
	if !CanTransition(prior.Status, StatusRescheduled) {
		return nil, &Error{
			Kind:             KindInvalidStatusTransition,
			Op:               "reschedule",
			Message:          fmt.Sprintf("cannot reschedule appointment in status %q", prior.Status),
			TenantID:         tenantID,
			AppointmentID:    id,
			BookingReference: prior.BookingReference,
		}
	}

	if prior.Unassigned() && s.policy == PolicyShared {
		if _, err := tx.Exec(ctx, acquireTenantLock, tenantID.String()); err != nil {
			return nil, fmt.Errorf("booking: acquire tenant slot lock: %w", err)
		}
	}

	ref, found, err := s.findConflict(ctx, tx, tenantID, prior.StaffID, newStart, newEnd, &id)
	if err != nil {
		return nil, fmt.Errorf("booking: scan conflicts: %w", err)
	}
	if found {
		return nil, &Error{
			Kind:                 KindAppointmentConflict,
			Op:                   "reschedule",
			Message:              "requested time overlaps an existing appointment",
			TenantID:             tenantID,
			ServiceID:            prior.ServiceID,
			AppointmentID:        id,
			BookingReference:     prior.BookingReference,
			RequestedStart:       newStart,
			ConflictingReference: ref,
		}
	}

	query := `
		UPDATE appointments
		SET start_time = $3, end_time = $4, status = 'rescheduled', updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + appointmentColumns
	updated, err := scanAppointment(tx.QueryRow(ctx, query, tenantID, id, newStart, newEnd))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
			return nil, &Error{
				Kind:             KindAppointmentConflict,
				Op:               "reschedule",
				Message:          "slot was taken by a concurrent booking",
				TenantID:         tenantID,
				AppointmentID:    id,
				BookingReference: prior.BookingReference,
				RequestedStart:   newStart,
				Err:              err,
			}
		}
		return nil, fmt.Errorf("booking: reschedule: %w", err)
	}

	if _, err := events.AppendCanonicalEvent(ctx, tx, tenantID, updated.BookingReference, rescheduledEvent(prior, updated, serviceName)); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("booking: commit reschedule: %w", err)
	}
	return updated, nil
}

// Confirm moves a pending or rescheduled appointment to confirmed.
func (s *Store) Confirm(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'confirmed', updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status IN ('pending', 'rescheduled')
		RETURNING ` + appointmentColumns
	return s.applyTransition(ctx, tenantID, id, "confirm", KindInvalidStatusTransition,
		query, []any{tenantID, id},
		func(a *Appointment) []events.CanonicalEvent {
			return []events.CanonicalEvent{confirmedEvent(a)}
		})
}

// Cancel releases the slot. Only appointments already in a terminal status
// are rejected.
func (s *Store) Cancel(ctx context.Context, tenantID, id uuid.UUID, reason, cancelledBy string) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'cancelled', cancelled_at = now(), cancel_reason = NULLIF($3, ''),
		    cancelled_by = NULLIF($4, ''), updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = ANY($5)
		RETURNING ` + appointmentColumns
	return s.applyTransition(ctx, tenantID, id, "cancel", KindSchedulingError,
		query, []any{tenantID, id, reason, cancelledBy, ActiveStatusStrings()},
		func(a *Appointment) []events.CanonicalEvent {
			return []events.CanonicalEvent{cancelledEvent(a)}
		})
}

// CheckIn records customer arrival. Requires a confirmed appointment.
func (s *Store) CheckIn(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'checked_in', checked_in_at = now(), updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = 'confirmed'
		RETURNING ` + appointmentColumns
	return s.applyTransition(ctx, tenantID, id, "check in", KindInvalidStatusTransition,
		query, []any{tenantID, id}, nil)
}

// StartService marks service delivery as begun. Requires a checked-in
// appointment.
func (s *Store) StartService(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'in_progress', service_started_at = now(), updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = 'checked_in'
		RETURNING ` + appointmentColumns
	return s.applyTransition(ctx, tenantID, id, "start service", KindInvalidStatusTransition,
		query, []any{tenantID, id}, nil)
}

// Complete finishes service delivery. Requires an in-progress appointment.
func (s *Store) Complete(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'completed', service_completed_at = now(), updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = 'in_progress'
		RETURNING ` + appointmentColumns
	return s.applyTransition(ctx, tenantID, id, "complete", KindInvalidStatusTransition,
		query, []any{tenantID, id},
		func(a *Appointment) []events.CanonicalEvent {
			return []events.CanonicalEvent{completedEvent(a)}
		})
}

// MarkNoShow flags a missed appointment. Allowed from any non-terminal
// status.
func (s *Store) MarkNoShow(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'no_show', updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = ANY($3)
		RETURNING ` + appointmentColumns
	return s.applyTransition(ctx, tenantID, id, "mark no-show", KindInvalidStatusTransition,
		query, []any{tenantID, id, ActiveStatusStrings()},
		func(a *Appointment) []events.CanonicalEvent {
			return []events.CanonicalEvent{noShowEvent(a)}
		})
}

// ConfirmPayment settles the payment and, for pending appointments,
// confirms the booking in the same statement.
func (s *Store) ConfirmPayment(ctx context.Context, tenantID, id uuid.UUID, transactionID string) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET payment_status = 'paid', payment_transaction_id = NULLIF($3, ''),
		    status = CASE WHEN status = 'pending' THEN 'confirmed' ELSE status END,
		    updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = ANY($4)
		  AND payment_status IN ('pending', 'failed')
		RETURNING ` + appointmentColumns
	return s.applyTransition(ctx, tenantID, id, "confirm payment", KindSchedulingError,
		query, []any{tenantID, id, transactionID, ActiveStatusStrings()},
		func(a *Appointment) []events.CanonicalEvent {
			return []events.CanonicalEvent{paymentConfirmedEvent(a)}
		})
}

// RecordFeedback attaches a rating and optional comment to a completed
// appointment.
func (s *Store) RecordFeedback(ctx context.Context, tenantID, id uuid.UUID, rating int32, feedback string) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET rating = $3, feedback = NULLIF($4, ''), updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = 'completed'
		RETURNING ` + appointmentColumns
	return s.applyTransition(ctx, tenantID, id, "record feedback", KindInvalidStatusTransition,
		query, []any{tenantID, id, rating, feedback}, nil)
}

// applyTransition runs a status-guarded update and appends the events built
// from the updated row, in one transaction. When the guard matches no row it
// distinguishes a missing appointment from an illegal transition.
func (s *Store) applyTransition(ctx context.Context, tenantID, id uuid.UUID, action string, failKind Kind, query string, args []any, build func(*Appointment) []events.CanonicalEvent) (*Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking: begin %s: %w", action, err)
	}
	defer tx.Rollback(ctx)

	appt, err := scanAppointment(tx.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.transitionFailure(ctx, tx, tenantID, id, action, failKind)
	}
	if err != nil {
		return nil, fmt.Errorf("booking: %s: %w", action, err)
	}

	if build != nil {
		for _, evt := range build(appt) {
			if _, err := events.AppendCanonicalEvent(ctx, tx, tenantID, appt.BookingReference, evt); err != nil {
				return nil, err
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("booking: commit %s: %w", action, err)
	}
	return appt, nil
}

func (s *Store) transitionFailure(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID, action string, kind Kind) error {
	current, err := getAppointment(ctx, tx, tenantID, id)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("cannot %s appointment in status %q", action, current.Status)
	if action == "cancel" && current.Status == StatusCancelled {
		msg = "appointment already cancelled"
	}
	return &Error{
		Kind:             kind,
		Op:               action,
		Message:          msg,
		TenantID:         tenantID,
		AppointmentID:    id,
		BookingReference: current.BookingReference,
	}
}

func (s *Store) findConflict(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, staffID *uuid.UUID, start, end time.Time, exclude *uuid.UUID) (string, bool, error) {
	if staffID == nil && s.policy == PolicyUnlimited {
		return "", false, nil
	}
	var row pgx.Row
	if staffID != nil {
		row = tx.QueryRow(ctx, conflictScanAssigned, tenantID, *staffID, ActiveStatusStrings(), end, start, exclude)
	} else {
		row = tx.QueryRow(ctx, conflictScanUnassigned, tenantID, ActiveStatusStrings(), end, start, exclude)
	}
	var ref string
	err := row.Scan(&ref)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return ref, true, nil
}

// GetByID fetches one appointment scoped to the tenant.
func (s *Store) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return getAppointment(ctx, s.db, tenantID, id)
}

// GetByReference fetches one appointment by its booking reference.
func (s *Store) GetByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1 AND booking_reference = $2`
	appt, err := scanAppointment(s.db.QueryRow(ctx, query, tenantID, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: get by reference: %w", err)
	}
	return appt, nil
}

// upcomingStatuses are the states a customer can still show up for. Bookings
// already in progress are excluded; the front desk lists those separately.
func upcomingStatuses() []string {
	return []string{string(StatusPending), string(StatusConfirmed), string(StatusCheckedIn)}
}

// Upcoming lists appointments starting inside [from, to), soonest first.
// A non-nil staffID narrows the listing to that staff member's bookings.
func (s *Store) Upcoming(ctx context.Context, tenantID uuid.UUID, staffID *uuid.UUID, from, to time.Time) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1
		  AND start_time >= $2 AND start_time < $3
		  AND status = ANY($4)
		  AND ($5::uuid IS NULL OR staff_id = $5)
		ORDER BY start_time`
	rows, err := s.db.Query(ctx, query, tenantID, from, to, upcomingStatuses(), staffID)
	if err != nil {
		return nil, fmt.Errorf("booking: list upcoming: %w", err)
	}
	defer rows.Close()

	var appts []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("booking: scan upcoming: %w", err)
		}
		appts = append(appts, *appt)
	}
	return appts, rows.Err()
}

// BusyInterval is an occupied stretch of calendar used by slot search.
type BusyInterval struct {
	AppointmentID    uuid.UUID
	StaffID          *uuid.UUID
	BookingReference string
	Window           calendar.Window
}

// ListBusyWindows returns the active occupancy overlapping [from, to) for
// one staff member, or for the unassigned pool when staffID is nil.
func (s *Store) ListBusyWindows(ctx context.Context, tenantID uuid.UUID, staffID *uuid.UUID, from, to time.Time) ([]BusyInterval, error) {
	query := `
		SELECT id, staff_id, booking_reference, start_time, end_time
		FROM appointments
		WHERE tenant_id = $1
		  AND status = ANY($2)
		  AND start_time < $3
		  AND end_time > $4
		  AND (($5::uuid IS NULL AND staff_id IS NULL) OR staff_id = $5)
		ORDER BY start_time`
	rows, err := s.db.Query(ctx, query, tenantID, ActiveStatusStrings(), to, from, staffID)
	if err != nil {
		return nil, fmt.Errorf("booking: list busy windows: %w", err)
	}
	defer rows.Close()

	var busy []BusyInterval
	for rows.Next() {
		var b BusyInterval
		if err := rows.Scan(&b.AppointmentID, &b.StaffID, &b.BookingReference, &b.Window.Start, &b.Window.End); err != nil {
			return nil, fmt.Errorf("booking: scan busy window: %w", err)
		}
		busy = append(busy, b)
	}
	return busy, rows.Err()
}

func getAppointment(ctx context.Context, q querier, tenantID, id uuid.UUID) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1 AND id = $2`
	appt, err := scanAppointment(q.QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: get appointment: %w", err)
	}
	return appt, nil
}

func getAppointmentForUpdate(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE`
	appt, err := scanAppointment(tx.QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: lock appointment: %w", err)
	}
	return appt, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status, paymentStatus, source, recurrence string
	err := row.Scan(
		&a.ID, &a.TenantID, &a.ServiceID, &a.StaffID,
		&a.Customer.Name, &a.Customer.Phone, &a.Customer.Email, &a.Customer.NIN, &a.Customer.BVN,
		&a.StartTime, &a.EndTime, &a.Timezone,
		&status, &a.BookingReference,
		&a.PaymentRequired, &a.PaymentAmountKobo, &paymentStatus, &a.PaymentTransactionID,
		&a.Notes, &a.SpecialRequests, &a.InternalNotes, &source,
		&recurrence, &a.RecurrenceInterval, &a.RecurrenceEndDate, &a.ParentAppointmentID,
		&a.CancelledAt, &a.CancelReason, &a.CancelledBy,
		&a.CheckedInAt, &a.ServiceStartAt, &a.ServiceEndAt,
		&a.Rating, &a.Feedback,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	a.PaymentStatus = PaymentStatus(paymentStatus)
	a.Source = BookingSource(source)
	a.RecurrenceType = RecurrenceType(recurrence)
	return &a, nil
}
