package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lis-backend/internal/model"
	"lis-backend/pkg/jwtutil"
)

type fakeUserStore struct {
	users map[uint]*model.User
	calls int
	err   error
}

func (s *fakeUserStore) FindUserByID(_ context.Context, id uint) (*model.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func testTokens() *jwtutil.Util {
	return jwtutil.New(&jwtutil.Config{
		SigningKey: "test-signing-key",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})
}

func testUser() *model.User {
	tenantID := uint(3)
	return &model.User{
		ID:       42,
		Email:    "tech@lab.example",
		Role:     model.RoleTenantUser,
		TenantID: &tenantID,
		IsActive: true,
		Tenant:   &model.Tenant{ID: tenantID, Name: "Acme Labs", IsActive: true},
	}
}

func TestAuthenticatePublicPathBypassesAuthentication(t *testing.T) {
	store := &fakeUserStore{}
	s := NewJWTStrategy(testTokens(), store, []string{"/api/v1/auth", "/health"})

	req := httptest.NewRequest("POST", "/api/v1/auth/login", nil)
	identity, raw, err := s.Authenticate(req)

	require.NoError(t, err)
	assert.Nil(t, identity)
	assert.Empty(t, raw)
	assert.Zero(t, store.calls)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	store := &fakeUserStore{}
	s := NewJWTStrategy(testTokens(), store, nil)

	req := httptest.NewRequest("GET", "/api/v1/patients", nil)
	_, _, err := s.Authenticate(req)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Zero(t, store.calls)
}

func TestAuthenticateMalformedHeaders(t *testing.T) {
	store := &fakeUserStore{}
	s := NewJWTStrategy(testTokens(), store, nil)

	cases := []string{
		"Basic dXNlcjpwYXNz",
		"bearer lowercase-prefix",
		"Bearer ",
		"Bearer",
	}
	for _, header := range cases {
		req := httptest.NewRequest("GET", "/api/v1/patients", nil)
		req.Header.Set("Authorization", header)

		_, _, err := s.Authenticate(req)
		require.Error(t, err, "header %q should be rejected", header)
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	}
	// Malformed headers must fail before any lookup happens.
	assert.Zero(t, store.calls)
}

func TestAuthenticateValidToken(t *testing.T) {
	user := testUser()
	store := &fakeUserStore{users: map[uint]*model.User{user.ID: user}}
	tokens := testTokens()
	s := NewJWTStrategy(tokens, store, nil)

	pair, err := s.Issue(user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	identity, raw, err := s.Authenticate(req)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, user.ID, identity.ID)
	assert.Equal(t, model.RoleTenantUser, identity.Role)
	assert.True(t, identity.IsAuthenticated)
	require.NotNil(t, identity.Tenant)
	assert.Equal(t, user.Tenant.ID, identity.Tenant.ID)
	assert.Equal(t, pair.AccessToken, raw)
	assert.Equal(t, 1, store.calls)
}

func TestAuthenticateFallbackHeader(t *testing.T) {
	user := testUser()
	store := &fakeUserStore{users: map[uint]*model.User{user.ID: user}}
	s := NewJWTStrategy(testTokens(), store, nil)

	pair, err := s.Issue(user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/patients", nil)
	req.Header.Set(fallbackAuthHeader, "Bearer "+pair.AccessToken)

	identity, _, err := s.Authenticate(req)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, user.ID, identity.ID)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	store := &fakeUserStore{}
	s := NewJWTStrategy(testTokens(), store, nil)

	req := httptest.NewRequest("GET", "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	_, _, err := s.Authenticate(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Zero(t, store.calls)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	// Token was issued while the user existed; the user has since been
	// removed. This must surface as an authentication failure, not a
	// fault.
	user := testUser()
	tokens := testTokens()
	pair, err := tokens.Issue(user.ID, user.Role)
	require.NoError(t, err)

	store := &fakeUserStore{users: map[uint]*model.User{}}
	s := NewJWTStrategy(tokens, store, nil)

	req := httptest.NewRequest("GET", "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	_, _, err = s.Authenticate(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), "user not found")
}

func TestAuthenticateStorageFault(t *testing.T) {
	user := testUser()
	tokens := testTokens()
	pair, err := tokens.Issue(user.ID, user.Role)
	require.NoError(t, err)

	store := &fakeUserStore{err: context.DeadlineExceeded}
	s := NewJWTStrategy(tokens, store, nil)

	req := httptest.NewRequest("GET", "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	_, _, err = s.Authenticate(req)
	require.Error(t, err)
	// Storage faults are not authentication decisions.
	assert.NotErrorIs(t, err, ErrAuthenticationFailed)
}

func TestIdentityCarriesTokenRoleNotLiveRole(t *testing.T) {
	// The role embedded at issuance wins over the live record until
	// the user re-authenticates.
	user := testUser()
	tokens := testTokens()
	pair, err := tokens.Issue(user.ID, model.RoleTenantAdmin)
	require.NoError(t, err)

	store := &fakeUserStore{users: map[uint]*model.User{user.ID: user}}
	s := NewJWTStrategy(tokens, store, nil)

	req := httptest.NewRequest("GET", "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	identity, _, err := s.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTenantAdmin, identity.Role)
}
