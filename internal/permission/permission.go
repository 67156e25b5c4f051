// Package permission provides role-based access checks evaluated by
// route handlers after the tenant resolution middleware has run. Every
// predicate fails closed: a nil identity or missing attribute denies
// access rather than erroring.
package permission

import (
	"net/http"

	"lis-backend/internal/auth"
	"lis-backend/internal/model"
)

// TenantOwned is implemented by any resource that belongs to a tenant.
type TenantOwned interface {
	TenantRef() *uint
}

// IsTenantAdmin checks if the identity holds the tenant admin role.
func IsTenantAdmin(identity *auth.Identity) bool {
	return identity != nil &&
		identity.IsAuthenticated &&
		identity.Role == model.RoleTenantAdmin
}

// IsTenantUser checks if the identity is a member of any tenant,
// regardless of role within it.
func IsTenantUser(identity *auth.Identity) bool {
	return identity != nil &&
		identity.IsAuthenticated &&
		identity.Tenant != nil
}

// IsSameTenant checks that the identity's tenant owns the target
// object. Objects without a tenant are always denied.
func IsSameTenant(identity *auth.Identity, obj TenantOwned) bool {
	if identity == nil || !identity.IsAuthenticated || identity.Tenant == nil {
		return false
	}
	if obj == nil {
		return false
	}
	ref := obj.TenantRef()
	if ref == nil {
		return false
	}
	return *ref == identity.Tenant.ID
}

// IsTenantAdminOrReadOnly grants safe (read) methods to any
// authenticated identity and mutating methods to tenant admins only.
func IsTenantAdminOrReadOnly(identity *auth.Identity, method string) bool {
	if identity == nil || !identity.IsAuthenticated {
		return false
	}
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return identity.Role == model.RoleTenantAdmin
}
