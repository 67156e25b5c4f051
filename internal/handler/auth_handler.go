package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lis-backend/internal/auth"
	"lis-backend/internal/model"
	"lis-backend/pkg/database"
	"lis-backend/pkg/jwtutil"
	"lis-backend/pkg/logger"
	"lis-backend/prometheus"
)

// UserStore is the user lookup surface the handlers need.
type UserStore interface {
	FindUserByID(ctx context.Context, id uint) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
}

var (
	strategy auth.Strategy
	tokens   *jwtutil.Util
	users    UserStore
)

// Init wires the handlers to the authentication strategy selected at
// process start.
func Init(s auth.Strategy, t *jwtutil.Util, u UserStore) {
	strategy = s
	tokens = t
	users = u
}

func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := users.FindUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.IsActive {
		log.Warn("Login attempt for deactivated account", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_inactive")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account deactivated"})
	}

	// Issue the credential pair. The role is embedded at issuance time
	// and stays fixed for the token's lifetime.
	pair, err := strategy.Issue(user)
	if err != nil {
		log.Error("Failed to generate tokens", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user_id":       user.ID,
		"role":          user.Role,
		"user": map[string]interface{}{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"tenant_id":  user.TenantID,
		},
	})
}

// Refresh exchanges a valid refresh token for a fresh credential pair.
func Refresh(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RefreshCounter.Inc()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		log.Error("Failed to parse refresh request")
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
	}

	claims, err := tokens.Validate(req.RefreshToken)
	if err != nil || claims.TokenType != jwtutil.TokenTypeRefresh {
		log.Warn("Refresh token rejected", zap.Error(err))
		prometheus.RecordAuthError("invalid_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	user, err := users.FindUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		log.Warn("Refresh for unknown user", zap.Uint("user_id", claims.UserID))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	if !user.IsActive {
		prometheus.RecordAuthError("user_inactive")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account deactivated"})
	}

	pair, err := strategy.Issue(user)
	if err != nil {
		log.Error("Failed to generate tokens", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	// The presented pair is superseded by the new one.
	prometheus.DecreaseActiveTokens()
	prometheus.IncreaseActiveTokens()

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user_id":       user.ID,
		"role":          user.Role,
	})
}

func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	// Parse request
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		TenantID  uint   `json:"tenant_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" || req.TenantID == 0 {
		log.Error("Invalid registration data", zap.String("email", req.Email))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and tenant_id are required"})
	}

	// The target tenant must exist and be active
	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, req.TenantID); result.Error != nil {
		log.Error("Tenant not found", zap.Uint("tenant_id", req.TenantID))
		prometheus.RecordAuthError("tenant_not_found")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant not found"})
	}
	if !tenant.IsActive {
		prometheus.RecordTenantError(tenant.ID, "tenant_inactive")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant is deactivated"})
	}

	// Check if user already exists
	var existingUser model.User
	if result := database.GetDB().Where("email = ?", req.Email).First(&existingUser); result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.RoleTenantUser,
		TenantID:  &tenant.ID,
		IsActive:  true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", tenant.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":        user.ID,
			"email":     user.Email,
			"role":      user.Role,
			"tenant_id": user.TenantID,
		},
	})
}

// GetProfile returns the authenticated user's own record.
func GetProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	user, err := users.FindUserByID(c.Request().Context(), userID)
	if err != nil {
		log.Error("Profile lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}
