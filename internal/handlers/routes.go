package handlers

import (
	"github.com/gin-gonic/gin"

	"queue-manager-api/internal/middleware"
	"queue-manager-api/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	Services *services.ServiceContainer
	Health   HealthChecker
	Mode     string

	// AuthService guards write routes when set
	AuthService *middleware.AuthService

	// DevTokens registers POST /auth/token
	DevTokens bool
}

// SetupRoutes registers the domain routes on the /api group
func SetupRoutes(api *gin.RouterGroup, config *RouterConfig) {
	serviceHandler := NewServiceHandler(config.Services.CatalogService)
	staffHandler := NewStaffHandler(config.Services.StaffService)
	appointmentHandler := NewAppointmentHandler(config.Services.AppointmentService)
	queueHandler := NewQueueHandler(config.Services.QueueService)
	healthHandler := NewHealthHandler(config.Health, config.Mode)

	api.GET("/health", healthHandler.Health)

	if config.AuthService != nil {
		authHandler := NewAuthHandler(config.AuthService)
		auth := api.Group("/auth")
		{
			if config.DevTokens {
				auth.POST("/token", authHandler.IssueToken)
			}
			auth.POST("/refresh", authHandler.RefreshToken)
		}
	}

	write := writeGuard(config.AuthService)
	desk := roleGuard(config.AuthService, middleware.RoleOperator, middleware.RoleAdmin)

	catalog := api.Group("/services")
	{
		catalog.GET("", serviceHandler.ListServices)
		catalog.GET("/:id", serviceHandler.GetService)
		catalog.POST("", write, desk, serviceHandler.CreateService)
	}

	staff := api.Group("/staff")
	{
		staff.GET("", staffHandler.ListStaff)
		staff.GET("/:id", staffHandler.GetStaff)
		staff.POST("", write, desk, staffHandler.CreateStaff)
	}

	appointments := api.Group("/appointments")
	{
		appointments.GET("", appointmentHandler.ListAppointments)
		appointments.GET("/:id", appointmentHandler.GetAppointment)
		appointments.POST("", write, appointmentHandler.BookAppointment)
		appointments.PATCH("/:id/status", write, desk, appointmentHandler.UpdateStatus)
		appointments.DELETE("/:id", write, appointmentHandler.CancelAppointment)
	}

	queue := api.Group("/queue")
	{
		queue.GET("", queueHandler.GetSummary)
		queue.POST("", queueHandler.JoinQueue)
		queue.POST("/next", write, desk, queueHandler.CallNext)
		queue.GET("/:id", queueHandler.GetEntry)
		queue.DELETE("/:id", queueHandler.LeaveQueue)
	}
}

// writeGuard requires a bearer token when auth is configured
func writeGuard(authService *middleware.AuthService) gin.HandlerFunc {
	if authService == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.Authentication(authService)
}

// roleGuard restricts a write route to roles when auth is configured. It runs
// after writeGuard.
func roleGuard(authService *middleware.AuthService, roles ...middleware.UserRole) gin.HandlerFunc {
	if authService == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.Authorization(roles...)
}
