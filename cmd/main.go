package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"lis-backend/internal/auth"
	"lis-backend/internal/handler"
	"lis-backend/internal/middleware"
	"lis-backend/internal/store"
	"lis-backend/pkg/config"
	"lis-backend/pkg/database"
	"lis-backend/pkg/jwtutil"
	"lis-backend/pkg/logger"
	"lis-backend/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting LIS backend...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.Initialize(database.DBConfig{
		DSN:             cfg.DB.GetDSN(),
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		LogLevel:        cfg.DB.LogLevel,
	}); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Select the authentication mechanism at process start. JWT is the
	// configured strategy; alternatives implement auth.Strategy.
	tokens := jwtutil.New(&jwtutil.Config{
		SigningKey: cfg.JWT.SigningKey,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	users := store.NewUserStore(database.GetDB())
	strategy := auth.NewJWTStrategy(tokens, users, cfg.Auth.PublicPaths)
	handler.Init(strategy, tokens, users)
	log.Info("Authentication strategy initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.TenantResolution(strategy, cfg.Auth.TenantExemptPaths))

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	authGroup := e.Group("/api/v1/auth")
	authGroup.POST("/login", handler.Login)
	authGroup.POST("/refresh", handler.Refresh)
	authGroup.POST("/register", handler.Register)

	// Tenant lifecycle
	tenants := e.Group("/api/v1/tenants")
	tenants.POST("/register", handler.RegisterTenant)
	tenants.GET("/current", handler.GetTenant)
	tenants.POST("/:id/deactivate", handler.DeactivateTenant)
	tenants.POST("/:id/activate", handler.ActivateTenant)

	// User profile
	usersGroup := e.Group("/api/v1/users")
	usersGroup.GET("/profile", handler.GetProfile)

	// Tenant-scoped resources
	patients := e.Group("/api/v1/patients")
	patients.GET("", handler.ListPatients)
	patients.POST("", handler.CreatePatient)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
