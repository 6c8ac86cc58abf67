package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// nowFunc is swapped out by tests that pin envelope timestamps.
var nowFunc = time.Now

// CanonicalEvent is a versioned scheduling fact. The type string doubles as
// the routing key downstream, so it never changes once consumers exist; new
// shapes get a new version suffix instead.
type CanonicalEvent interface {
	EventType() string
}

// Envelope wraps a canonical event with the metadata consumers dedupe and
// route on. The envelope is what the outbox stores and what goes onto the
// wire, so the field tags are part of the contract.
type Envelope struct {
	EventID         uuid.UUID       `json:"event_id"`
	EventType       string          `json:"event_type"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	TimestampMicros int64           `json:"timestamp"`
	CorrelationID   string          `json:"correlation_id,omitempty"`
	Payload         json.RawMessage `json:"payload"`
}

// EnvelopeOption adjusts a generated envelope. Tests use these to pin the
// random or clock-derived fields.
type EnvelopeOption func(*Envelope)

// WithEventID replaces the generated event id. Nil ids are ignored.
func WithEventID(id uuid.UUID) EnvelopeOption {
	return func(e *Envelope) {
		if id != uuid.Nil {
			e.EventID = id
		}
	}
}

// WithTimestamp replaces the occurred-at instant. Zero times are ignored.
func WithTimestamp(ts time.Time) EnvelopeOption {
	return func(e *Envelope) {
		if !ts.IsZero() {
			e.TimestampMicros = ts.UTC().UnixMicro()
		}
	}
}

func newEnvelope(tenantID uuid.UUID, correlationID string, evt CanonicalEvent, opts ...EnvelopeOption) (Envelope, error) {
	eventType, err := validateEvent(tenantID, evt)
	if err != nil {
		return Envelope{}, err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s payload: %w", eventType, err)
	}
	env := Envelope{
		EventID:         uuid.New(),
		EventType:       eventType,
		TenantID:        tenantID,
		TimestampMicros: nowFunc().UTC().UnixMicro(),
		CorrelationID:   strings.TrimSpace(correlationID),
		Payload:         payload,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&env)
		}
	}
	return env, nil
}

func validateEvent(tenantID uuid.UUID, evt CanonicalEvent) (string, error) {
	if tenantID == uuid.Nil {
		return "", errors.New("events: tenant id is required")
	}
	if evt == nil {
		return "", errors.New("events: canonical event required")
	}
	eventType := strings.TrimSpace(evt.EventType())
	if eventType == "" {
		return "", errors.New("events: event type missing")
	}
	return eventType, nil
}

// execer lets the append run on a pool, a connection, or the transaction the
// state change itself runs in. Passing the transaction is what makes the
// event atomic with that change.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AppendCanonicalEvent builds the envelope for evt and writes it to the
// outbox through exec. The returned envelope carries the generated event id.
func AppendCanonicalEvent(ctx context.Context, exec execer, tenantID uuid.UUID, correlationID string, evt CanonicalEvent, opts ...EnvelopeOption) (Envelope, error) {
	if exec == nil {
		return Envelope{}, errors.New("events: exec required")
	}
	env, err := newEnvelope(tenantID, correlationID, evt, opts...)
	if err != nil {
		return Envelope{}, err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal envelope: %w", err)
	}
	_, err = exec.Exec(ctx,
		`INSERT INTO outbox (id, tenant_id, event_type, payload) VALUES ($1, $2, $3, $4)`,
		env.EventID, env.TenantID, env.EventType, body)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: append %s: %w", env.EventType, err)
	}
	return env, nil
}
