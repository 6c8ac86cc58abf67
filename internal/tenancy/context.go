// Package tenancy carries the resolved tenant through request contexts. The
// auth middleware is the only writer; everything downstream just reads.
package tenancy

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// WithTenantID returns a context carrying the tenant.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenantID)
}

// TenantIDFromContext reports the tenant resolved for this request, if any.
func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || tenantID == uuid.Nil {
		return uuid.Nil, false
	}
	return tenantID, true
}
