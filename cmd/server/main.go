package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/config"
	"github.com/ironforge/gym-admin-backend/internal/database"
	"github.com/ironforge/gym-admin-backend/internal/handlers"
	"github.com/ironforge/gym-admin-backend/internal/middleware"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/ironforge/gym-admin-backend/internal/storage"
	"github.com/ironforge/gym-admin-backend/pkg/billing"
	"github.com/ironforge/gym-admin-backend/pkg/jwt"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting IronForge gym admin backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancelMigrate()
		logger.Fatalf("Failed to apply schema: %v", err)
	}
	cancelMigrate()

	// Repositories
	timeout := cfg.Database.QueryTimeout
	memberRepo := database.NewMemberRepository(db, timeout)
	paymentRepo := database.NewPaymentRepository(db, timeout)
	staffRepo := database.NewStaffRepository(db, timeout)
	sessionRepo := database.NewSessionRepository(db, timeout)
	assignmentRepo := database.NewAssignmentRepository(db, timeout)
	loginAttemptRepo := database.NewLoginAttemptRepository(db, timeout)

	// Read-only tables shared by every request
	prices, err := billing.NewPriceTable(cfg.Billing.Prices)
	if err != nil {
		logger.Fatalf("Invalid plan prices: %v", err)
	}
	policy := access.DefaultPolicy()
	clock := services.SystemClock(cfg.Schedule.Location)

	deps := services.Deps{
		Policy:    policy,
		Validator: validator.New(),
		Clock:     clock,
		Audit:     services.NewAuditService(database.NewAuditRepository(db, timeout), logger, cfg.Security.EnableAuditLog),
		Logger:    logger,
	}

	// Photo storage is optional
	var photos services.PhotoUploader
	if cfg.Storage.Enabled() {
		store, err := storage.NewS3PhotoStore(context.Background(), cfg.Storage, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize photo storage: %v", err)
		}
		photos = store
		logger.WithField("bucket", cfg.Storage.Bucket).Info("Photo storage enabled")
	} else {
		logger.Warn("S3_BUCKET not set, photo uploads are disabled")
	}

	// Services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.SessionExpiry)
	rateLimitService := services.NewRateLimitService(loginAttemptRepo,
		services.NewRateLimitConfig(cfg.Login.MaxAttempts, cfg.Login.WindowMinutes), clock)

	authService, err := services.NewAuthService(deps, staffRepo, memberRepo, sessionRepo,
		rateLimitService, jwtService, cfg.Security.BcryptCost)
	if err != nil {
		logger.Fatalf("Failed to initialize auth service: %v", err)
	}
	memberService := services.NewMemberService(deps, memberRepo, sessionRepo, photos, cfg.Security.BcryptCost)
	paymentService := services.NewPaymentService(deps, paymentRepo, memberRepo, prices)
	staffService := services.NewStaffService(deps, staffRepo, sessionRepo, cfg.Security.BcryptCost)
	attendanceService := services.NewAttendanceService(deps, database.NewAttendanceRepository(db, timeout))
	routineService := services.NewRoutineService(deps, database.NewRoutineRepository(db, timeout), assignmentRepo)
	workoutService := services.NewWorkoutService(deps, database.NewWorkoutSessionRepository(db, timeout))
	progressService := services.NewProgressService(deps, database.NewProgressRepository(db, timeout))
	statsService := services.NewStatsService(deps, database.NewStatsRepository(db, timeout))

	// Cron jobs
	cronService := services.NewCronService(assignmentRepo, sessionRepo, rateLimitService, clock,
		cfg.Schedule.AssignmentExpiryCron, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(middleware.ClientInfo())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	handlers.RegisterRoutes(router, middleware.AuthMiddleware(authService, logger), handlers.Handlers{
		Health:     handlers.NewHealthHandler(db, cfg.Database.PublicAnonKey, version),
		Auth:       handlers.NewAuthHandler(authService, policy, logger),
		Members:    handlers.NewMemberHandler(memberService, paymentService, progressService, policy, logger),
		Payments:   handlers.NewPaymentHandler(paymentService, policy, logger),
		Staff:      handlers.NewStaffHandler(staffService, policy, logger),
		Attendance: handlers.NewAttendanceHandler(attendanceService, policy, logger),
		Routines:   handlers.NewRoutineHandler(routineService, policy, logger),
		Workouts:   handlers.NewWorkoutHandler(workoutService, policy, logger),
		Stats:      handlers.NewStatsHandler(statsService, policy, logger),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	logger.Info("Stopping cron service...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}
