package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists services and business hours.
type Store struct {
	db DB
}

// NewStore creates a catalog store.
func NewStore(db DB) *Store {
	if db == nil {
		panic("catalog: pgx pool required")
	}
	return &Store{db: db}
}

const serviceColumns = `id, tenant_id, name, description, category,
	duration_minutes, buffer_before_minutes, buffer_after_minutes,
	min_advance_hours, max_advance_days, max_concurrent_bookings,
	price_kobo, currency, payment_required, is_active, is_online_bookable,
	created_at, updated_at`

// CreateService inserts a new service definition.
func (s *Store) CreateService(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	if svc.Currency == "" {
		svc.Currency = "NGN"
	}
	if svc.MaxConcurrentBookings <= 0 {
		svc.MaxConcurrentBookings = 1
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	_, err := s.db.Exec(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		svc.ID, svc.TenantID, svc.Name, svc.Description, svc.Category,
		svc.DurationMinutes, svc.BufferBeforeMinutes, svc.BufferAfterMinutes,
		svc.MinAdvanceHours, svc.MaxAdvanceDays, svc.MaxConcurrentBookings,
		svc.PriceKobo, svc.Currency, svc.PaymentRequired, svc.IsActive, svc.IsOnlineBookable,
		svc.CreatedAt, svc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("catalog: create service: %w", err)
	}
	return nil
}

// GetService fetches one service scoped to a tenant.
func (s *Store) GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*Service, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE tenant_id = $1 AND id = $2`, tenantID, serviceID)

	svc, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get service: %w", err)
	}
	return svc, nil
}

// ListServices returns a tenant's services, optionally active-only,
// ordered by name.
func (s *Store) ListServices(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE tenant_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, *svc)
	}
	return out, rows.Err()
}

// DeactivateService flips the active flag off. Services are never deleted.
func (s *Store) DeactivateService(ctx context.Context, tenantID, serviceID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE services SET is_active = FALSE, updated_at = $1
		WHERE tenant_id = $2 AND id = $3`, time.Now().UTC(), tenantID, serviceID)
	if err != nil {
		return fmt.Errorf("catalog: deactivate service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

const hoursColumns = `id, tenant_id, day_of_week, is_open, open_time, close_time,
	break_start, break_end, observes_public_holidays, observes_religious_holidays,
	created_at, updated_at`

// UpsertBusinessHours writes the row for a (tenant, weekday) pair. The
// unique index on that pair keeps the one-row-per-day invariant even under
// concurrent admin edits.
func (s *Store) UpsertBusinessHours(ctx context.Context, h *BusinessHours) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	now := time.Now().UTC()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now

	_, err := s.db.Exec(ctx, `
		INSERT INTO business_hours (`+hoursColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id, day_of_week) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			break_start = EXCLUDED.break_start,
			break_end = EXCLUDED.break_end,
			observes_public_holidays = EXCLUDED.observes_public_holidays,
			observes_religious_holidays = EXCLUDED.observes_religious_holidays,
			updated_at = EXCLUDED.updated_at`,
		h.ID, h.TenantID, int(h.DayOfWeek), h.IsOpen, h.OpenTime, h.CloseTime,
		h.BreakStart, h.BreakEnd, h.ObservesPublicHolidays, h.ObservesReligiousHolidays,
		h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("catalog: upsert business hours: %w", err)
	}
	return nil
}

// ListBusinessHours returns the tenant's weekly grid ordered by weekday.
// An empty result means the tenant has not configured hours yet.
func (s *Store) ListBusinessHours(ctx context.Context, tenantID uuid.UUID) (WeekSchedule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+hoursColumns+`
		FROM business_hours
		WHERE tenant_id = $1
		ORDER BY day_of_week ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list business hours: %w", err)
	}
	defer rows.Close()

	var out WeekSchedule
	for rows.Next() {
		var h BusinessHours
		var day int
		err := rows.Scan(
			&h.ID, &h.TenantID, &day, &h.IsOpen, &h.OpenTime, &h.CloseTime,
			&h.BreakStart, &h.BreakEnd, &h.ObservesPublicHolidays, &h.ObservesReligiousHolidays,
			&h.CreatedAt, &h.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan business hours: %w", err)
		}
		h.DayOfWeek = time.Weekday(day)
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanService(row pgx.Row) (*Service, error) {
	var svc Service
	err := row.Scan(
		&svc.ID, &svc.TenantID, &svc.Name, &svc.Description, &svc.Category,
		&svc.DurationMinutes, &svc.BufferBeforeMinutes, &svc.BufferAfterMinutes,
		&svc.MinAdvanceHours, &svc.MaxAdvanceDays, &svc.MaxConcurrentBookings,
		&svc.PriceKobo, &svc.Currency, &svc.PaymentRequired, &svc.IsActive, &svc.IsOnlineBookable,
		&svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}
