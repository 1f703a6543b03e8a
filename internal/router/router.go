package router

import (
	"time"

	"task-tracker/backend/internal/handlers"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/monitoring"
	"task-tracker/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CORSOptions struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

type Dependencies struct {
	Logger      *zap.Logger
	Monitor     *monitoring.Monitor
	RateLimiter *middleware.IPRateLimiter
	CORS        CORSOptions

	Tasks    services.TaskService
	Activity services.ActivityLogService
	Users    services.UserService
	Register services.RegisterService
	Auth     services.AuthService
}

// New builds the HTTP surface. A nil RateLimiter disables rate limiting and
// a nil Monitor drops the metrics middleware and monitoring routes.
func New(deps Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.RecoveryWithLog(deps.Logger))
	r.Use(middleware.SecurityHeaders())
	if len(deps.CORS.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           deps.CORS.MaxAge,
		}))
	}
	if deps.Monitor != nil {
		r.Use(deps.Monitor.Middleware())
		r.GET("/health", deps.Monitor.HealthHandler())
		r.GET("/ready", deps.Monitor.ReadinessHandler())
		r.GET("/live", deps.Monitor.LivenessHandler())
		r.GET("/metrics", deps.Monitor.MetricsHandler())
	}

	taskHandler := handlers.NewTaskHandler(deps.Tasks)
	activityHandler := handlers.NewActivityHandler(deps.Activity)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Register, deps.Auth)

	api := r.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}

	auth := api.Group("/auth")
	auth.POST("/register", userHandler.Register)
	auth.POST("/login", userHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Authenticate(deps.Auth))

	tasks := protected.Group("/tasks")
	tasks.GET("", taskHandler.ListTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("/summary", taskHandler.Summary)
	tasks.GET("/:id", taskHandler.GetTask)
	tasks.PATCH("/:id", taskHandler.UpdateTask)

	protected.GET("/activity-logs", activityHandler.ListLogs)
	protected.GET("/users", middleware.RequireRole(models.RoleLead), userHandler.ListUsers)

	return r
}
