// Package reporting aggregates appointment history into per-tenant
// analytics read from the same Postgres database the booking store
// writes to, but over database/sql so the heavy scans stay off the
// pgx connection pool used by the booking path.
package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/naijabook/platform/internal/booking"
	"github.com/naijabook/platform/pkg/logging"
)

var reportingTracer = otel.Tracer("naijabook.internal.reporting")

// Summary is the per-tenant appointment rollup for a date range.
// Rates are percentages of the total; revenue counts completed
// appointments only.
type Summary struct {
	TenantID uuid.UUID `json:"tenant_id"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`

	TotalAppointments     int            `json:"total_appointments"`
	ByStatus              map[string]int `json:"by_status"`
	ConfirmedAppointments int            `json:"confirmed_appointments"`
	CancelledAppointments int            `json:"cancelled_appointments"`
	NoShowAppointments    int            `json:"no_show_appointments"`
	CompletedAppointments int            `json:"completed_appointments"`

	CompletionRate   float64 `json:"completion_rate"`
	CancellationRate float64 `json:"cancellation_rate"`
	NoShowRate       float64 `json:"no_show_rate"`

	TotalRevenueKobo        int64   `json:"total_revenue_kobo"`
	AverageBookingValueKobo int64   `json:"average_booking_value_kobo"`
	AverageRating           float64 `json:"average_rating"`
}

// DayCount is one day of booking volume in the tenant's local calendar.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Store runs read-only analytics queries against the appointments table.
type Store struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewStore(db *sql.DB, logger *logging.Logger) *Store {
	if db == nil {
		panic("reporting: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, logger: logger}
}

// Summarize rolls up every appointment whose start falls in [from, to).
// Callers expanding calendar dates should pass the exclusive end of the
// last day so both boundary days are covered.
func (s *Store) Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*Summary, error) {
	ctx, span := reportingTracer.Start(ctx, "reporting.summarize")
	defer span.End()
	span.SetAttributes(attribute.String("naijabook.tenant_id", tenantID.String()))

	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("reporting: tenant id required")
	}
	if !to.After(from) {
		return nil, fmt.Errorf("reporting: range end %s is not after start %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}

	summary := &Summary{
		TenantID: tenantID,
		From:     from,
		To:       to,
		ByStatus: make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		WHERE tenant_id = $1 AND start_time >= $2 AND start_time < $3
		GROUP BY status`,
		tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("reporting: count by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("reporting: scan status count: %w", err)
		}
		summary.ByStatus[status] = count
		summary.TotalAppointments += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reporting: iterate status counts: %w", err)
	}

	summary.ConfirmedAppointments = summary.ByStatus[string(booking.StatusConfirmed)]
	summary.CancelledAppointments = summary.ByStatus[string(booking.StatusCancelled)]
	summary.NoShowAppointments = summary.ByStatus[string(booking.StatusNoShow)]
	summary.CompletedAppointments = summary.ByStatus[string(booking.StatusCompleted)]

	if summary.TotalAppointments == 0 {
		return summary, nil
	}

	total := float64(summary.TotalAppointments)
	summary.CompletionRate = float64(summary.CompletedAppointments) / total * 100
	summary.CancellationRate = float64(summary.CancelledAppointments) / total * 100
	summary.NoShowRate = float64(summary.NoShowAppointments) / total * 100

	var avgRating sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(payment_amount_kobo), 0), AVG(rating)
		FROM appointments
		WHERE tenant_id = $1 AND start_time >= $2 AND start_time < $3 AND status = $4`,
		tenantID, from, to, string(booking.StatusCompleted),
	).Scan(&summary.TotalRevenueKobo, &avgRating)
	if err != nil {
		return nil, fmt.Errorf("reporting: completed revenue: %w", err)
	}
	if avgRating.Valid {
		summary.AverageRating = avgRating.Float64
	}
	if summary.CompletedAppointments > 0 {
		summary.AverageBookingValueKobo = summary.TotalRevenueKobo / int64(summary.CompletedAppointments)
	}

	s.logger.Info("analytics summary computed",
		"tenant_id", tenantID.String(),
		"total", summary.TotalAppointments,
		"completed", summary.CompletedAppointments,
		"revenue_kobo", summary.TotalRevenueKobo,
	)
	return summary, nil
}

// DailyCounts returns booking volume per local calendar day for the
// given statuses. An empty status list means every capacity-occupying
// status. Days with no appointments are omitted.
func (s *Store) DailyCounts(ctx context.Context, tenantID uuid.UUID, from, to time.Time, statuses []string) ([]DayCount, error) {
	ctx, span := reportingTracer.Start(ctx, "reporting.daily_counts")
	defer span.End()
	span.SetAttributes(attribute.String("naijabook.tenant_id", tenantID.String()))

	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("reporting: tenant id required")
	}
	if !to.After(from) {
		return nil, fmt.Errorf("reporting: range end %s is not after start %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	if len(statuses) == 0 {
		statuses = booking.ActiveStatusStrings()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT (start_time AT TIME ZONE timezone)::date AS day, COUNT(*)
		FROM appointments
		WHERE tenant_id = $1 AND start_time >= $2 AND start_time < $3 AND status = ANY($4)
		GROUP BY day
		ORDER BY day`,
		tenantID, from, to, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("reporting: daily counts: %w", err)
	}
	defer rows.Close()

	var days []DayCount
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("reporting: scan daily count: %w", err)
		}
		days = append(days, DayCount{Day: day.Format("2006-01-02"), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reporting: iterate daily counts: %w", err)
	}
	return days, nil
}
