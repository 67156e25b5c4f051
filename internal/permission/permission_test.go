package permission

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"lis-backend/internal/auth"
	"lis-backend/internal/model"
)

type ownedBy uint

func (o ownedBy) TenantRef() *uint {
	id := uint(o)
	return &id
}

type unowned struct{}

func (unowned) TenantRef() *uint { return nil }

func memberIdentity(role string, tenantID uint) *auth.Identity {
	return &auth.Identity{
		ID:              42,
		Role:            role,
		Tenant:          &model.Tenant{ID: tenantID, IsActive: true},
		IsAuthenticated: true,
	}
}

func TestIsTenantAdmin(t *testing.T) {
	assert.True(t, IsTenantAdmin(memberIdentity(model.RoleTenantAdmin, 1)))
	assert.False(t, IsTenantAdmin(memberIdentity(model.RoleTenantUser, 1)))
	assert.False(t, IsTenantAdmin(nil))

	unauthenticated := memberIdentity(model.RoleTenantAdmin, 1)
	unauthenticated.IsAuthenticated = false
	assert.False(t, IsTenantAdmin(unauthenticated))
}

func TestIsTenantUser(t *testing.T) {
	assert.True(t, IsTenantUser(memberIdentity(model.RoleTenantUser, 1)))
	assert.True(t, IsTenantUser(memberIdentity(model.RoleTenantAdmin, 1)))
	assert.False(t, IsTenantUser(nil))

	noTenant := memberIdentity(model.RoleTenantUser, 1)
	noTenant.Tenant = nil
	assert.False(t, IsTenantUser(noTenant))
}

func TestIsSameTenant(t *testing.T) {
	identity := memberIdentity(model.RoleTenantUser, 3)

	assert.True(t, IsSameTenant(identity, ownedBy(3)))
	assert.False(t, IsSameTenant(identity, ownedBy(4)))

	// Objects without a tenant are always denied, fail-closed.
	assert.False(t, IsSameTenant(identity, unowned{}))
	assert.False(t, IsSameTenant(identity, nil))
	assert.False(t, IsSameTenant(nil, ownedBy(3)))

	noTenant := memberIdentity(model.RoleTenantUser, 3)
	noTenant.Tenant = nil
	assert.False(t, IsSameTenant(noTenant, ownedBy(3)))
}

func TestIsTenantAdminOrReadOnly(t *testing.T) {
	admin := memberIdentity(model.RoleTenantAdmin, 1)
	member := memberIdentity(model.RoleTenantUser, 1)

	// Safe methods pass for any tenant member.
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, IsTenantAdminOrReadOnly(member, method), method)
	}

	// Mutations require the admin role.
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.True(t, IsTenantAdminOrReadOnly(admin, method), method)
		assert.False(t, IsTenantAdminOrReadOnly(member, method), method)
	}

	assert.False(t, IsTenantAdminOrReadOnly(nil, http.MethodGet))
}
