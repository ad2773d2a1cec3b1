package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleSignup(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleGetSession(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleToggleTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleGetFilter(c *gin.Context)
	HandleSetFilter(c *gin.Context)
	HandleGetFilteredTasks(c *gin.Context)

	HandleGetCalendar(c *gin.Context)
	HandleGetAnalytics(c *gin.Context)
	HandleGetPreferences(c *gin.Context)
	HandleUpdatePreferences(c *gin.Context)
}

type handlerImpl struct {
	logger      zerolog.Logger
	auth        services.AuthService
	tasks       services.TaskService
	analytics   services.AnalyticsService
	preferences services.PreferencesService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	analyticsService services.AnalyticsService,
	preferencesService services.PreferencesService,
) Handler {
	return &handlerImpl{
		logger:      logger,
		auth:        authService,
		tasks:       taskService,
		analytics:   analyticsService,
		preferences: preferencesService,
	}
}

func RegisterRoutes(router gin.IRouter, h Handler) {
	authRouter := router.Group("/auth")
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/signup", h.HandleSignup)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)
	authRouter.GET("/session", h.HandleAuthMiddleware, h.HandleGetSession)

	protected := router.Group("", h.HandleAuthMiddleware)

	tasksRouter := protected.Group("/tasks")
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/filter", h.HandleGetFilter)
	tasksRouter.PUT("/filter", h.HandleSetFilter)
	tasksRouter.GET("/filtered", h.HandleGetFilteredTasks)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PATCH("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
	tasksRouter.POST("/:id/toggle", h.HandleToggleTask)

	protected.GET("/calendar", h.HandleGetCalendar)
	protected.GET("/analytics", h.HandleGetAnalytics)
	protected.GET("/preferences", h.HandleGetPreferences)
	protected.PUT("/preferences", h.HandleUpdatePreferences)
}
