package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"clinic-records-backend/internal/config"
	"clinic-records-backend/internal/database"
	"clinic-records-backend/internal/handler"
	"clinic-records-backend/internal/middleware"
	"clinic-records-backend/internal/repository"
	"clinic-records-backend/internal/service"
	"clinic-records-backend/internal/storage"
	"clinic-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	log.Println("Configuration loaded successfully")

	// 2. Root logger, injected into every service
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Server.GinMode != "release" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	// 3. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 4. Initialize database connection and schema
	db := database.Connect(cfg)
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 5. Initialize file store for medical report uploads
	store, err := storage.NewLocalStore(cfg.Upload.Dir, logger)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// 6. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	serviceRepo := repository.NewServiceRepo(db)
	billRepo := repository.NewBillRepo(db)

	// 7. Initialize services
	authService := service.NewAuthService(userRepo, logger)
	patientService := service.NewPatientService(patientRepo, billRepo, store, cfg.Upload.PublicBaseURL, logger)
	billingService := service.NewBillingService(billRepo, serviceRepo, patientRepo, logger)
	dashboardService := service.NewDashboardService(patientRepo, billRepo, logger)

	// Reconcile report files left behind by a crash between row and file delete
	if err := patientService.SweepOrphanedFiles(); err != nil {
		logger.Warn().Err(err).Msg("Orphaned file sweep failed")
	}

	// 8. Setup Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// 9. Setup Gin router
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	// 10. Register handlers
	authHandler := handler.NewAuthHandler(authService)
	patientHandler := handler.NewPatientHandler(patientService)
	serviceHandler := handler.NewServiceHandler(billingService)
	billHandler := handler.NewBillHandler(billingService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// 11. Define routes
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "clinic-records-backend",
		})
	})

	// Uploaded report files
	r.Static("/media/medical_reports", store.Root())

	// Auth routes (login/refresh public, the rest authenticated)
	auth := r.Group("/auth")
	{
		auth.POST("/login/", authHandler.Login)
		auth.POST("/token/refresh/", authHandler.Refresh)
		auth.POST("/logout/", authHandler.Logout)
		auth.GET("/user/", middleware.AuthMiddleware(), authHandler.CurrentUser)
		auth.POST("/register/", middleware.AuthMiddleware(), middleware.RequireAdmin(), authHandler.Register)
	}

	// Patient routes (authenticated)
	patients := r.Group("/patients")
	patients.Use(middleware.AuthMiddleware())
	{
		patients.GET("/", patientHandler.List)
		patients.POST("/", patientHandler.Create)
		patients.GET("/:id/", patientHandler.Get)
		patients.PATCH("/:id/", patientHandler.Update)
		patients.DELETE("/:id/", patientHandler.Delete)
		patients.GET("/:id/details/", patientHandler.Details)
		patients.GET("/:id/billing_history/", patientHandler.BillingHistory)
		patients.POST("/:id/add_medical_record/", patientHandler.AddMedicalRecord)
		patients.POST("/:id/add_medical_report/", patientHandler.AddMedicalReport)
		patients.DELETE("/:id/delete-medical-record/:record_id/", patientHandler.DeleteMedicalRecord)
		patients.DELETE("/:id/delete-medical-report/:report_id/", patientHandler.DeleteMedicalReport)
	}

	// Service routes (authenticated)
	services := r.Group("/services")
	services.Use(middleware.AuthMiddleware())
	{
		services.GET("/", serviceHandler.List)
		services.POST("/", serviceHandler.Create)
		services.GET("/:id/", serviceHandler.Get)
		services.PATCH("/:id/", serviceHandler.Update)
		services.DELETE("/:id/", serviceHandler.Delete)
	}

	// Bill routes (authenticated)
	bills := r.Group("/bills")
	bills.Use(middleware.AuthMiddleware())
	{
		bills.POST("/", billHandler.Create)
		bills.GET("/list/", billHandler.List)
		bills.GET("/daily-report/", billHandler.DailyReport)
		bills.GET("/:id/", billHandler.Get)
		bills.PATCH("/:id/", billHandler.Update)
		bills.GET("/:id/download/", billHandler.Download)
	}

	// Dashboard (authenticated)
	r.GET("/dashboard/", middleware.AuthMiddleware(), dashboardHandler.Get)

	// 12. Setup graceful shutdown
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	log.Println("Server exited")
}
