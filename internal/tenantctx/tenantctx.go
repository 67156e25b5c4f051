// Package tenantctx holds the ambient "current tenant" for the
// duration of a request. The slot rides on context.Context, so it is
// scoped to the request's own execution unit and can never be observed
// by a concurrently-served request.
package tenantctx

import (
	"context"

	"github.com/labstack/echo/v4"

	"lis-backend/internal/model"
)

type ctxKey struct{}

// Set publishes the tenant into the context. Only the tenant
// resolution middleware should call this on the request path.
func Set(ctx context.Context, tenant *model.Tenant) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenant)
}

// Get returns the current tenant, or false when no tenant is set.
func Get(ctx context.Context) (*model.Tenant, bool) {
	tenant, ok := ctx.Value(ctxKey{}).(*model.Tenant)
	if !ok || tenant == nil {
		return nil, false
	}
	return tenant, true
}

// Clear removes the current tenant. Idempotent: clearing an empty
// context is a no-op.
func Clear(ctx context.Context) context.Context {
	if _, ok := Get(ctx); !ok {
		return ctx
	}
	// Shadow the value so Get never falls through to a stale tenant
	// set further up the context chain.
	return context.WithValue(ctx, ctxKey{}, (*model.Tenant)(nil))
}

// FromEcho returns the current tenant for an echo request.
func FromEcho(c echo.Context) (*model.Tenant, bool) {
	return Get(c.Request().Context())
}
