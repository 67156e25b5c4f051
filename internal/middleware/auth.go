package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lis-backend/internal/auth"
	"lis-backend/internal/tenantctx"
	"lis-backend/pkg/logger"
	"lis-backend/prometheus"
)

// TenantResolution resolves the acting tenant for every request and
// publishes it into the request context. All failure modes short
// circuit with the same 403 shape so the response does not reveal
// which check failed beyond what the error field states.
//
// The sequence per request: clear any inherited context, skip exempt
// paths, authenticate, reject identities without an active tenant,
// publish the tenant, and unconditionally clear it again on the way
// out, including on panics downstream.
func TenantResolution(strategy auth.Strategy, exemptPaths []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			log := logger.FromContext(c)

			// Clear any tenant context leaked by a previous request
			// reusing this execution unit.
			c.SetRequest(c.Request().WithContext(
				tenantctx.Clear(c.Request().Context())))

			if pathExempt(c.Request().URL.Path, exemptPaths) {
				return next(c)
			}

			defer func() {
				c.SetRequest(c.Request().WithContext(
					tenantctx.Clear(c.Request().Context())))

				if r := recover(); r != nil {
					log.Error("panic during request processing", zap.Any("panic", r))
					err = c.JSON(http.StatusInternalServerError, echo.Map{
						"error":  "Internal error",
						"detail": "an unexpected error occurred",
					})
				}
			}()

			identity, rawToken, authErr := strategy.Authenticate(c.Request())
			if authErr != nil {
				if errors.Is(authErr, auth.ErrAuthenticationFailed) {
					log.Warn("Authentication failed", zap.Error(authErr))
					prometheus.RecordAuthError("credential_missing")
				} else {
					// Storage fault. Surface the same safe shape, keep
					// the diagnostics internal.
					log.Error("Identity lookup failed", zap.Error(authErr))
					prometheus.RecordAuthError("identity_lookup_failed")
				}
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":  "Credential Missing",
					"detail": "unable to authenticate your account",
				})
			}

			// Public path per the strategy's own allowlist: no
			// identity, no failure, no tenant context.
			if identity == nil {
				return next(c)
			}

			if identity.Tenant == nil {
				log.Warn("User has no tenant association", zap.Uint("user_id", identity.ID))
				prometheus.RecordAuthError("tenant_missing")
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":  "No tenant associated with user",
					"detail": "Your account is not associated with any organization.",
				})
			}

			if !identity.Tenant.IsActive {
				log.Warn("Tenant is deactivated",
					zap.Uint("user_id", identity.ID),
					zap.Uint("tenant_id", identity.Tenant.ID))
				prometheus.RecordTenantError(identity.Tenant.ID, "tenant_inactive")
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":  "Tenant inactive",
					"detail": "Your organization account has been deactivated.",
				})
			}

			// Publish the tenant for tenant-scoped data operations and
			// attach the identity for handlers and permission checks.
			c.SetRequest(c.Request().WithContext(
				tenantctx.Set(c.Request().Context(), identity.Tenant)))
			c.Set("identity", identity)
			c.Set("user_id", identity.ID)
			c.Set("role", identity.Role)
			c.Set("access_token", rawToken)

			log.Debug("Request authenticated with tenant context",
				zap.Uint("user_id", identity.ID),
				zap.Uint("tenant_id", identity.Tenant.ID),
				zap.String("role", identity.Role))

			return next(c)
		}
	}
}

// IdentityFromEcho returns the identity attached by TenantResolution,
// or nil on exempt paths.
func IdentityFromEcho(c echo.Context) *auth.Identity {
	identity, _ := c.Get("identity").(*auth.Identity)
	return identity
}

func pathExempt(path string, exemptPaths []string) bool {
	for _, prefix := range exemptPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
