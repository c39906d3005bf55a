package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/service"
	"github.com/pageza/fittrack/backend/internal/types"
)

// WorkoutHandler serves workout logging and summaries
type WorkoutHandler struct {
	workoutService service.IWorkoutService
	now            func() time.Time
}

func NewWorkoutHandler(workoutService service.IWorkoutService, now func() time.Time) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, now: now}
}

func (h *WorkoutHandler) RegisterRoutes(router *gin.RouterGroup, estimateLimit gin.HandlerFunc) {
	workout := router.Group("/workout")
	{
		workout.POST("", estimateLimit, h.Log)
		workout.GET("/week", h.GetWeek)
		workout.GET("/:date", h.GetDay)
	}
}

func (h *WorkoutHandler) Log(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.LogWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, estimate, err := h.workoutService.Log(c.Request.Context(), userID, req.WorkoutDescription)
	if err != nil {
		respondError(c, err)
		return
	}

	muscles := estimate.MuscleTrained
	if muscles == nil {
		muscles = []string{}
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":            "Workout logged",
		"data":               entry,
		"calorie_burned":     estimate.CaloriesValue(),
		"workout_suggestion": estimate.WorkoutSuggestion,
		"muscle_trained":     muscles,
	})
}

func (h *WorkoutHandler) GetDay(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	date, err := service.ParseDate(c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.workoutService.Day(c.Request.Context(), userID, date)
	if errors.Is(err, service.ErrNoEntries) {
		c.JSON(http.StatusOK, gin.H{
			"message": "No workouts found for this date",
			"date":    date.UTC().Format(models.DateLayout),
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (h *WorkoutHandler) GetWeek(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	week, err := h.workoutService.Week(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, week)
}
