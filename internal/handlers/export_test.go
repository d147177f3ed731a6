package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcast/api/internal/models"
)

func newExportRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/plan/export", NewExportHandler().Export)
	return r
}

func postExport(t *testing.T, r *gin.Engine, req models.ExportRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/plan/export", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)
	return w
}

func TestExportReturnsCalendar(t *testing.T) {
	r := newExportRouter()

	w := postExport(t, r, models.ExportRequest{
		Date:  "2026-08-25",
		Title: "Jersey City day",
		Items: []models.ItineraryItem{
			{Time: "10:00", Activity: "Liberty Park", Type: "park", DurationMinutes: 90, Cost: 0},
			{Time: "13:00", Activity: "Maritime Museum", Type: "museum", DurationMinutes: 120, Cost: 18},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "trip-plan.ics")

	body := w.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:Liberty Park")
	assert.Contains(t, body, "SUMMARY:Maritime Museum")
}

func TestExportRejectsBadDate(t *testing.T) {
	r := newExportRouter()

	w := postExport(t, r, models.ExportRequest{
		Date:  "08/25/2026",
		Items: []models.ItineraryItem{{Activity: "Liberty Park", DurationMinutes: 60}},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestExportRejectsMissingItems(t *testing.T) {
	r := newExportRouter()

	w := postExport(t, r, models.ExportRequest{Date: "2026-08-25"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
