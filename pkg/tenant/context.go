package tenant

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const TenantKey contextKey = "tenant"

var ErrNoTenant = errors.New("tenant not found")

// CurrentId retrieves the current tenant's ID from the context. Returns ErrNoTenant if not present.
func CurrentId(ctx context.Context) (int, error) {
	t, ok := ctx.Value(TenantKey).(Tenant)
	if !ok {
		log.Trace("tenant not found in context")
		return 0, ErrNoTenant
	}
	return t.Id, nil
}

func Current(ctx context.Context) (Tenant, error) {
	t, ok := ctx.Value(TenantKey).(Tenant)
	if !ok {
		log.Trace("tenant not found in context")
		return Tenant{}, ErrNoTenant
	}
	return t, nil
}

func WithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, TenantKey, t)
}
