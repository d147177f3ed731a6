package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tripcast/api/internal/dataset"
	"github.com/tripcast/api/internal/models"
)

const catalogJSON = `[
	{"name": "Liberty Park", "type": "park", "price": 0, "rating": 4.7, "lat": 40.001, "lng": -74.001},
	{"name": "Maritime Museum", "type": "museum", "price": 18, "rating": 4.4, "lat": 40.002, "lng": -74.003},
	{"name": "City Lookout", "type": "landmark", "price": 12, "rating": 4.2, "lat": 40.004, "lng": -74.002}
]`

func newActivitiesRouter(t *testing.T) *gin.Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "activities.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o644))

	store, err := dataset.Open(path, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/v1/activities", NewActivitiesHandler(store).List)
	return r
}

type activitiesResponse struct {
	Activities []models.Activity `json:"activities"`
	Categories []string          `json:"categories"`
	Count      int               `json:"count"`
}

func getActivities(t *testing.T, r *gin.Engine, query string) activitiesResponse {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/activities"+query, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp activitiesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListActivities(t *testing.T) {
	r := newActivitiesRouter(t)

	resp := getActivities(t, r, "")
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Activities, 3)
	assert.Equal(t, []string{"landmark", "museum", "park"}, resp.Categories)
}

func TestListActivitiesByCategory(t *testing.T) {
	r := newActivitiesRouter(t)

	resp := getActivities(t, r, "?category=Museum")
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Maritime Museum", resp.Activities[0].Name)
}

func TestListActivitiesUnknownCategory(t *testing.T) {
	r := newActivitiesRouter(t)

	resp := getActivities(t, r, "?category=aquarium")
	assert.Zero(t, resp.Count)
	assert.Empty(t, resp.Activities)
	assert.Len(t, resp.Categories, 3, "categories always describe the full catalog")
}
