package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lis-backend/internal/middleware"
	"lis-backend/internal/model"
	"lis-backend/internal/permission"
	"lis-backend/internal/tenantctx"
	"lis-backend/pkg/database"
	"lis-backend/pkg/logger"
	"lis-backend/prometheus"
)

// RegisterTenant creates a tenant together with its first tenant admin
// in one transaction: both records appear, or neither does.
func RegisterTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("register")

	var req struct {
		Name         string `json:"name"`
		Slug         string `json:"slug"`
		ContactEmail string `json:"contact_email"`
		Admin        struct {
			Email     string `json:"email"`
			Password  string `json:"password"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"admin"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Slug == "" || req.Admin.Email == "" || req.Admin.Password == "" {
		log.Error("Invalid tenant registration data", zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, slug and admin credentials are required"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	tenant := model.Tenant{
		Name:         req.Name,
		Slug:         req.Slug,
		ContactEmail: req.ContactEmail,
		IsActive:     true,
	}
	admin := model.User{
		Email:     req.Admin.Email,
		Password:  string(hashedPassword),
		FirstName: req.Admin.FirstName,
		LastName:  req.Admin.LastName,
		Role:      model.RoleTenantAdmin,
		IsActive:  true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		admin.TenantID = &tenant.ID
		return tx.Create(&admin).Error
	})
	if err != nil {
		log.Error("Failed to register tenant", zap.Error(err))
		prometheus.RecordAuthError("tenant_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant registration failed"})
	}

	log.Info("Tenant registered",
		zap.String("name", tenant.Name),
		zap.Uint("id", tenant.ID),
		zap.Uint("admin_id", admin.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Tenant registered successfully",
		"tenant":  tenant,
		"admin": map[string]interface{}{
			"id":    admin.ID,
			"email": admin.Email,
			"role":  admin.Role,
		},
	})
}

// GetTenant returns the tenant resolved for the current request.
func GetTenant(c echo.Context) error {
	tenant, ok := tenantctx.FromEcho(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}
	return c.JSON(http.StatusOK, tenant)
}

// DeactivateTenant marks a tenant inactive and cascades the flag to
// all of its users.
func DeactivateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("deactivate")

	tenant, err := tenantForMutation(c)
	if err != nil {
		return err
	}
	if tenant == nil {
		return nil // response already written
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := tenant.Deactivate(database.GetDB()); err != nil {
		log.Error("Failed to deactivate tenant", zap.Uint("tenant_id", tenant.ID), zap.Error(err))
		prometheus.RecordTenantError(tenant.ID, "deactivation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivation failed"})
	}

	log.Info("Tenant deactivated", zap.Uint("tenant_id", tenant.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Tenant deactivated",
		"tenant":  tenant,
	})
}

// ActivateTenant re-enables a tenant. Its users remain inactive until
// re-enabled individually.
func ActivateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("activate")

	tenant, err := tenantForMutation(c)
	if err != nil {
		return err
	}
	if tenant == nil {
		return nil
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := tenant.Activate(database.GetDB()); err != nil {
		log.Error("Failed to activate tenant", zap.Uint("tenant_id", tenant.ID), zap.Error(err))
		prometheus.RecordTenantError(tenant.ID, "activation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "activation failed"})
	}

	log.Info("Tenant activated", zap.Uint("tenant_id", tenant.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Tenant activated",
		"tenant":  tenant,
	})
}

// tenantForMutation loads the target tenant and enforces that the
// caller may manage it: a global admin, or a tenant admin of that same
// tenant. Returns (nil, nil) after writing the denial response.
func tenantForMutation(c echo.Context) (*model.Tenant, error) {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
	}

	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, uint(id)); result.Error != nil {
		log.Warn("Tenant not found", zap.Uint64("tenant_id", id))
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	identity := middleware.IdentityFromEcho(c)
	isGlobalAdmin := identity != nil && identity.IsAuthenticated && identity.Role == model.RoleAdmin
	if !isGlobalAdmin && !(permission.IsTenantAdmin(identity) && permission.IsSameTenant(identity, tenantRef(tenant.ID))) {
		log.Warn("Tenant mutation denied", zap.Uint("tenant_id", tenant.ID))
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
	}

	return &tenant, nil
}

type tenantRef uint

func (r tenantRef) TenantRef() *uint {
	id := uint(r)
	return &id
}
