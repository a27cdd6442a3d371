package main

import (
	"log"
	"os"

	"github.com/famtrack/expense_backend/controllers"
	"github.com/famtrack/expense_backend/database"
	"github.com/famtrack/expense_backend/docs"
	"github.com/famtrack/expense_backend/middleware"
	"github.com/famtrack/expense_backend/repository"
	"github.com/famtrack/expense_backend/services"
	"github.com/famtrack/expense_backend/websocket"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Family Expense API
// @version         1.0
// @description     API Server for the family expense tracker
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Initialize database
	database.Connect()
	database.Migrate()

	// Set up Swagger info
	docs.SwaggerInfo.Title = "Family Expense API"
	docs.SwaggerInfo.Description = "API Server for the family expense tracker"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + os.Getenv("PORT")
	if docs.SwaggerInfo.Host == "localhost:" {
		docs.SwaggerInfo.Host = "localhost:8080"
	}
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Repositories
	users := repository.NewUserRepository(database.DB)
	families := repository.NewFamilyRepository(database.DB)
	joinRequests := repository.NewJoinRequestRepository(database.DB)
	notifications := repository.NewNotificationRepository(database.DB)
	expenses := repository.NewExpenseRepository(database.DB)
	devices := repository.NewDeviceTokenRepository(database.DB)

	// Realtime notification stream
	hub := websocket.NewHub()
	go hub.Run()

	// Push dispatcher: FCM when credentials are configured, log-only
	// otherwise. Built here and injected; nothing below reaches for
	// global Firebase state.
	dispatcher := buildDispatcher(logger)

	notifier := services.NewNotificationService(dispatcher, devices, notifications, families, users, hub, logger)
	familyService := services.NewFamilyService(users, families, joinRequests, notifications, notifier, logger)
	cleanupService := services.NewCleanupService(users, families, expenses, logger)

	// Controllers
	authController := controllers.NewAuthController(users)
	familyController := controllers.NewFamilyController(familyService)
	joinRequestController := controllers.NewJoinRequestController(familyService)
	notificationController := controllers.NewNotificationController(notifications, devices)
	expenseController := controllers.NewExpenseController(expenses, users)
	cleanupController := controllers.NewCleanupController(cleanupService)

	// Nightly orphan-reference cleanup
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 3 * * *", func() {
		if _, err := cleanupService.CleanupOrphanedFamilyReferences(); err != nil {
			logger.WithError(err).Error("scheduled cleanup failed")
		}
	}); err != nil {
		log.Fatalf("Failed to schedule cleanup job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authentication routes
	auth := router.Group("/api")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		// Family routes
		api.POST("/families", familyController.CreateFamily)
		api.GET("/families/mine", familyController.GetOwnFamily)
		api.POST("/families/join", familyController.JoinFamily)
		api.POST("/families/invites", familyController.InviteMember)
		api.POST("/families/invites/resend", familyController.ResendInvitation)
		api.POST("/families/members/remove", familyController.RemoveMember)

		// Join request routes
		api.POST("/join-requests", joinRequestController.RequestToJoin)
		api.POST("/join-requests/resend", joinRequestController.Resend)
		api.POST("/join-requests/:id/resend", joinRequestController.ResendByID)
		api.POST("/join-requests/cancel", joinRequestController.Cancel)
		api.GET("/join-requests/pending", joinRequestController.GetOwnPending)
		api.GET("/join-requests/incoming", joinRequestController.GetIncoming)
		api.POST("/join-requests/:id/accept", joinRequestController.Accept)
		api.POST("/join-requests/:id/reject", joinRequestController.Reject)

		// Notification routes
		api.GET("/notifications", notificationController.GetNotifications)
		api.POST("/notifications/:id/read", notificationController.MarkRead)
		api.POST("/devices", notificationController.RegisterDevice)

		// Expense routes
		api.GET("/expenses", expenseController.GetExpenses)
		api.POST("/expenses", expenseController.CreateExpense)

		// Admin routes
		api.POST("/admin/cleanup", cleanupController.RunCleanup)
		api.GET("/admin/cleanup/status", cleanupController.GetCleanupStatus)
	}

	// WebSocket route
	router.GET("/ws", websocket.HandleConnection(hub))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server running on port %s", port)
	log.Printf("Swagger documentation available at http://localhost:%s/swagger/index.html", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildDispatcher constructs the push dispatcher from the environment.
func buildDispatcher(logger *logrus.Logger) services.Dispatcher {
	credentials := os.Getenv("FCM_CREDENTIALS_FILE")
	projectID := os.Getenv("FCM_PROJECT_ID")
	if credentials == "" || projectID == "" {
		logger.Warn("FCM_CREDENTIALS_FILE or FCM_PROJECT_ID not set, push notifications disabled")
		return services.NewLogDispatcher(logger)
	}

	dispatcher, err := services.NewFCMDispatcher(credentials, projectID, logger)
	if err != nil {
		log.Fatalf("Failed to initialize FCM dispatcher: %v", err)
	}
	return dispatcher
}
