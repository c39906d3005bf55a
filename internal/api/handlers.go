package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/fittrack/backend/internal/database"
	"github.com/pageza/fittrack/backend/internal/middleware"
	"github.com/pageza/fittrack/backend/internal/service"
	"gorm.io/gorm"
)

// Dependencies holds everything the HTTP layer needs. Limiter, Hub and Reports may be nil.
type Dependencies struct {
	DB       *gorm.DB
	Auth     service.IAuthService
	Profiles service.IProfileService
	Diet     service.IDietService
	Workouts service.IWorkoutService
	Reports  service.IReportService
	Hub      *service.RealtimeHub
	Limiter  *middleware.RateLimiter
	Now      func() time.Time

	// AllowedOrigins is checked on websocket upgrades.
	AllowedOrigins []string
}

// HealthHandler reports process and database health
type HealthHandler struct {
	db *gorm.DB
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	dbStatus := "ok"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.HealthCheck(ctx, h.db); err != nil {
			status = "degraded"
			dbStatus = err.Error()
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"message":  "FitTrack API is running",
		"version":  "v1.0.0",
		"database": dbStatus,
	})
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	health := &HealthHandler{db: deps.DB}
	router.GET("/health", health.HealthCheck)

	NewAuthHandler(deps.Auth).RegisterRoutes(&router.RouterGroup)

	// Everything below requires a bearer token
	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))
	estimateLimit := deps.Limiter.RateLimitMiddleware()

	NewProfileHandler(deps.Profiles).RegisterRoutes(protected)
	NewDietHandler(deps.Diet, now).RegisterRoutes(protected, estimateLimit)
	NewWorkoutHandler(deps.Workouts, now).RegisterRoutes(protected, estimateLimit)
	if deps.Reports != nil {
		NewReportHandler(deps.Reports, now).RegisterRoutes(protected)
	}
	if deps.Hub != nil {
		NewRealtimeHandler(deps.Hub, deps.AllowedOrigins).RegisterRoutes(protected)
	}
}
