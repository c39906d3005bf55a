package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/fittrack/backend/internal/service"
)

// ReportHandler serves the combined weekly report
type ReportHandler struct {
	reportService service.IReportService
	now           func() time.Time
}

func NewReportHandler(reportService service.IReportService, now func() time.Time) *ReportHandler {
	return &ReportHandler{reportService: reportService, now: now}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	report := router.Group("/report")
	{
		report.GET("/week", h.GetWeek)
		report.POST("/week/export", h.ExportWeek)
	}
}

func (h *ReportHandler) GetWeek(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.reportService.BuildWeek(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportWeek uploads the report and returns a short-lived download link.
func (h *ReportHandler) ExportWeek(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.reportService.ExportWeek(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
