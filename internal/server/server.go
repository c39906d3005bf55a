package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/fittrack/backend/config"
	"github.com/pageza/fittrack/backend/internal/api"
	"github.com/pageza/fittrack/backend/internal/database"
	"github.com/pageza/fittrack/backend/internal/middleware"
	"github.com/pageza/fittrack/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	hub    *service.RealtimeHub
}

// New wires services and routes on top of an open database. Redis and S3 are optional:
// without them drafts, rate limiting and exports are switched off.
func New(cfg *config.Config, db *gorm.DB) *Server {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	s := &Server{
		cfg:    cfg,
		router: router,
		db:     db,
		hub:    service.NewRealtimeHub(),
	}

	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Redis unavailable, drafts and rate limiting disabled: %v", err)
		} else {
			s.redis = client
		}
	}

	var drafts service.DraftStore
	var limiter *middleware.RateLimiter
	if s.redis != nil {
		drafts = service.NewRedisDraftStore(s.redis)
		limiter = middleware.NewEstimateRateLimiter(s.redis, cfg.EstimatesPerHour)
	}

	var storage service.ObjectStorage
	if cfg.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s3cfg, err := config.NewS3Config(ctx, cfg)
		cancel()
		if err != nil {
			log.Printf("Warning: S3 unavailable, report export disabled: %v", err)
		} else {
			storage = s3cfg
		}
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	profiles := service.NewProfileService(db)
	estimator := service.NewEstimatorService(cfg)
	diet := service.NewDietService(db, estimator, profiles, drafts, s.hub)
	workouts := service.NewWorkoutService(db, estimator, profiles, s.hub)
	reports := service.NewReportService(diet, workouts, storage)

	api.RegisterRoutes(router, api.Dependencies{
		DB:             db,
		Auth:           auth,
		Profiles:       profiles,
		Diet:           diet,
		Workouts:       workouts,
		Reports:        reports,
		Hub:            s.hub,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSOrigins,
	})

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases the Redis connection.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
