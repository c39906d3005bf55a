package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/service"
	"github.com/pageza/fittrack/backend/internal/types"
)

// DietHandler serves meal analysis, logging and summaries
type DietHandler struct {
	dietService service.IDietService
	now         func() time.Time
}

func NewDietHandler(dietService service.IDietService, now func() time.Time) *DietHandler {
	return &DietHandler{dietService: dietService, now: now}
}

// RegisterRoutes mounts the diet routes. estimateLimit guards the endpoint that calls the estimator.
func (h *DietHandler) RegisterRoutes(router *gin.RouterGroup, estimateLimit gin.HandlerFunc) {
	diet := router.Group("/diet")
	{
		diet.GET("/week", h.GetWeek)
		diet.GET("/:date", h.GetDay)
		diet.POST("/analyze", estimateLimit, h.Analyze)
		diet.POST("/save", h.Save)
	}
}

type dayNutrientsResponse struct {
	Nutrients *service.DayNutrients `json:"nutrients"`
	Entries   []models.DietEntry    `json:"entries"`
}

func (h *DietHandler) GetDay(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	date, err := service.ParseDate(c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	day, err := h.dietService.Day(c.Request.Context(), userID, date)
	if errors.Is(err, service.ErrNoEntries) {
		c.JSON(http.StatusOK, gin.H{"message": "No diet found for this date", "data": nil})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dayNutrientsResponse{Nutrients: day, Entries: day.Entries})
}

func (h *DietHandler) GetWeek(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	week, err := h.dietService.Week(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, week)
}

func (h *DietHandler) Analyze(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.AnalyzeDietRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	estimate, draftID, err := h.dietService.Analyze(c.Request.Context(), userID, req.MealDescription)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"nutrition": estimate}
	if draftID != "" {
		resp["draft_id"] = draftID
	}
	c.JSON(http.StatusOK, resp)
}

// Save stores a meal either from a draft or from client-confirmed numbers.
func (h *DietHandler) Save(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.SaveDietRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var (
		entry *models.DietEntry
		err   error
	)
	if draftID := strings.TrimSpace(req.DraftID); draftID != "" {
		entry, err = h.dietService.SaveDraft(c.Request.Context(), userID, draftID)
	} else {
		if req.Nutrition == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nutrition or draft_id is required"})
			return
		}
		entry, err = h.dietService.Save(c.Request.Context(), userID, req.MealDescription, &service.MealEstimate{
			Calories: req.Nutrition.Calories,
			Protein:  req.Nutrition.Protein,
			Carbs:    req.Nutrition.Carbs,
			Fat:      req.Nutrition.Fat,
		})
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Diet saved", "data": entry})
}
