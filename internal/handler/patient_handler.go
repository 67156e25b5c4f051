package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lis-backend/internal/middleware"
	"lis-backend/internal/model"
	"lis-backend/internal/permission"
	"lis-backend/internal/tenantctx"
	"lis-backend/pkg/database"
	"lis-backend/pkg/logger"
	"lis-backend/prometheus"
)

// patientOrderings whitelists the columns a client may sort the
// listing by. Anything else falls back to the default ordering.
var patientOrderings = map[string]struct{}{
	"created_at":    {},
	"last_name":     {},
	"date_of_birth": {},
}

// applyPatientFilters narrows a patient query with the optional
// search and ordering parameters. Search matches the MRN, names,
// email and phone number case-insensitively; ordering accepts a
// whitelisted column name, with a "-" prefix for descending.
func applyPatientFilters(q *gorm.DB, search, ordering string) *gorm.DB {
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where(
			"mrn ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone_number ILIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	order := "created_at DESC"
	column := strings.TrimPrefix(ordering, "-")
	if _, ok := patientOrderings[column]; ok {
		order = column
		if strings.HasPrefix(ordering, "-") {
			order += " DESC"
		}
	}
	return q.Order(order)
}

// ListPatients returns the patients of the current tenant. The tenant
// scope comes from the ambient context set by the middleware, so a
// request can only ever see its own tenant's rows.
func ListPatients(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var patients []model.Patient
	q := database.GetDB().
		Scopes(database.TenantScope(c.Request().Context())).
		Model(&model.Patient{})
	result := applyPatientFilters(q, c.QueryParam("search"), c.QueryParam("ordering")).
		Find(&patients)
	if result.Error != nil {
		log.Error("Failed to list patients", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list patients"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"patients": patients,
		"count":    len(patients),
	})
}

// CreatePatient creates a patient under the current tenant. Mutations
// require the tenant admin role; reads are open to any tenant member.
func CreatePatient(c echo.Context) error {
	log := logger.FromContext(c)

	identity := middleware.IdentityFromEcho(c)
	if !permission.IsTenantAdminOrReadOnly(identity, c.Request().Method) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
	}

	tenant, ok := tenantctx.FromEcho(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	var req struct {
		FirstName   string     `json:"first_name"`
		LastName    string     `json:"last_name"`
		DateOfBirth *time.Time `json:"date_of_birth"`
		MRN         string     `json:"mrn"`
		Email       string     `json:"email"`
		PhoneNumber string     `json:"phone_number"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse patient request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name and last_name are required"})
	}

	patient := model.Patient{
		TenantID:    tenant.ID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		MRN:         req.MRN,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&patient); result.Error != nil {
		log.Error("Failed to create patient", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create patient"})
	}

	log.Info("Patient created",
		zap.Uint("patient_id", patient.ID),
		zap.Uint("tenant_id", tenant.ID))
	return c.JSON(http.StatusCreated, patient)
}
