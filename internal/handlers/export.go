package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tripcast/api/internal/export"
	"github.com/tripcast/api/internal/middleware"
	"github.com/tripcast/api/internal/models"
)

// ExportHandler renders finished full-mode plans as iCalendar files
type ExportHandler struct{}

// NewExportHandler creates a new export handler
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// Export handles POST /api/v1/plan/export
func (h *ExportHandler) Export(c *gin.Context) {
	var req models.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		middleware.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	ics := export.Calendar(date, req.Title, req.Items)

	c.Header("Content-Disposition", `attachment; filename="trip-plan.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
