package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskville/internal/api/handlers"
	"taskville/internal/api/middleware"
	"taskville/internal/auth"
	"taskville/internal/config"
	"taskville/internal/models"
	"taskville/internal/repository"
	"taskville/internal/services"
)

// SetupRoutes wires repositories, services and handlers onto the router
// and returns the auth service so main can seed the default admin.
func SetupRoutes(r *gin.Engine, cfg *config.Config, logger *zap.Logger) *auth.Service {
	// Repositories
	userRepo := repository.NewUserRepository(models.DB)
	resetRepo := repository.NewResetRepository(models.DB)
	audit := repository.NewAuditWriter(models.DB, logger)

	// Services
	authService := auth.NewService(cfg, userRepo, resetRepo, logger)
	projectService := services.NewProjectService(logger)
	taskService := services.NewTaskService(logger)
	userService := services.NewUserService(authService, logger)
	reportService := services.NewReportService(logger)
	notificationService := services.NewNotificationService(logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, audit)
	projectHandler := handlers.NewProjectHandler(projectService, audit)
	taskHandler := handlers.NewTaskHandler(taskService, notificationService, audit)
	userHandler := handlers.NewUserHandler(userService, authService, audit)
	reportHandler := handlers.NewReportHandler(reportService, audit)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Middleware
	r.Use(middleware.CORSMiddleware())

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "Taskville API is running",
			})
		})

		// Auth routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/password/reset/request", authHandler.RequestPasswordReset)
			authGroup.POST("/password/reset/confirm", authHandler.ConfirmPasswordReset)
		}
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	protected.Use(middleware.CSRFMiddleware(authService))
	{
		// Auth routes (protected)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetMe)
		protected.POST("/auth/password/change", authHandler.ChangePassword)
		protected.GET("/auth/sessions", middleware.RequirePermission(auth.PermSystemAdmin), userHandler.Sessions)

		// Project routes
		projects := protected.Group("/projects")
		{
			projects.GET("", middleware.RequirePermission(auth.PermReadProjects), projectHandler.List)
			projects.GET("/:id", middleware.RequirePermission(auth.PermReadProjects), projectHandler.Get)
			projects.POST("", middleware.RequirePermission(auth.PermCreateProjects), projectHandler.Create)
			projects.PUT("/:id", middleware.RequirePermission(auth.PermUpdateProjects), projectHandler.Update)
			projects.DELETE("/:id", middleware.RequirePermission(auth.PermDeleteProjects), projectHandler.Delete)

			projects.GET("/:id/tasks", middleware.RequirePermission(auth.PermReadTasks), taskHandler.ListByProject)
			projects.GET("/:id/kanban", middleware.RequirePermission(auth.PermReadTasks), taskHandler.Kanban)
			projects.GET("/:id/report", middleware.RequirePermission(auth.PermViewAnalytics), reportHandler.Project)
		}

		// Task routes
		tasks := protected.Group("/tasks")
		{
			tasks.GET("/mine", middleware.RequirePermission(auth.PermReadTasks), taskHandler.MyTasks)
			tasks.GET("/:id", middleware.RequirePermission(auth.PermReadTasks), taskHandler.Get)
			tasks.POST("", middleware.RequirePermission(auth.PermCreateTasks), taskHandler.Create)
			tasks.PUT("/:id", middleware.RequirePermission(auth.PermUpdateTasks), taskHandler.Update)
			tasks.PATCH("/:id/progress", middleware.RequirePermission(auth.PermUpdateTasks), taskHandler.UpdateProgress)
			tasks.DELETE("/:id", middleware.RequirePermission(auth.PermDeleteTasks), taskHandler.Delete)
		}

		// User administration routes
		users := protected.Group("/users")
		{
			users.GET("", middleware.RequirePermission(auth.PermReadUsers), userHandler.List)
			users.GET("/:id", middleware.RequirePermission(auth.PermReadUsers), userHandler.Get)
			users.POST("", middleware.RequirePermission(auth.PermCreateUsers), userHandler.Create)
			users.PUT("/:id/role", middleware.RequirePermission(auth.PermUpdateUsers), userHandler.SetRole)
			users.PUT("/:id/active", middleware.RequirePermission(auth.PermUpdateUsers), userHandler.SetActive)
			users.DELETE("/:id", middleware.RequirePermission(auth.PermDeleteUsers), userHandler.Delete)
		}

		// Notification routes (own feed; broadcast and the due sweep are admin-only)
		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread", notificationHandler.UnreadCount)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.POST("/broadcast", middleware.RequirePermission(auth.PermSystemAdmin), notificationHandler.Broadcast)
			notifications.POST("/check-due", middleware.RequirePermission(auth.PermSystemAdmin), notificationHandler.CheckDueTasks)
		}

		// Report routes
		reports := protected.Group("/reports")
		{
			reports.GET("/overview", middleware.RequirePermission(auth.PermViewAnalytics), reportHandler.Overview)
			reports.GET("/workload", middleware.RequirePermission(auth.PermViewAnalytics), reportHandler.Workload)
			reports.GET("/audit", middleware.RequirePermission(auth.PermSystemAdmin), reportHandler.AuditLog)
		}
	}

	return authService
}
