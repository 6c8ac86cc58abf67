package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OutboxEntry is one stored event awaiting delivery.
type OutboxEntry struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Type      string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// DB is the subset of pgxpool.Pool the outbox store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OutboxStore reads and settles stored events. Writes happen inside domain
// transactions via AppendCanonicalEvent, so an event exists exactly when the
// state change that produced it committed.
type OutboxStore struct {
	db DB
}

func NewOutboxStore(db DB) *OutboxStore {
	if db == nil {
		panic("events: pgx pool required")
	}
	return &OutboxStore{db: db}
}

// FetchPending returns up to limit undelivered entries, oldest first.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error) {
	query := `
		SELECT id, tenant_id, event_type, payload, created_at
		FROM outbox
		WHERE delivered_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(rows pgx.Rows) (OutboxEntry, error) {
	var entry OutboxEntry
	var payload []byte
	if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.Type, &payload, &entry.CreatedAt); err != nil {
		return OutboxEntry{}, fmt.Errorf("events: scan outbox: %w", err)
	}
	entry.Payload = payload
	return entry, nil
}

// MarkDelivered settles one entry. It reports false when the entry was
// already settled, as happens when two relay instances race.
func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	ct, err := s.db.Exec(ctx,
		`UPDATE outbox SET delivered_at = now() WHERE id = $1 AND delivered_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}
