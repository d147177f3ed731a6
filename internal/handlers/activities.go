package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripcast/api/internal/dataset"
)

// ActivitiesHandler serves the bundled activity catalog
type ActivitiesHandler struct {
	store *dataset.Store
}

// NewActivitiesHandler creates a new activities handler
func NewActivitiesHandler(store *dataset.Store) *ActivitiesHandler {
	return &ActivitiesHandler{store: store}
}

// List returns the catalog, optionally narrowed to one category via
// ?category=. An unknown category yields an empty list, not an error.
func (h *ActivitiesHandler) List(c *gin.Context) {
	category := c.Query("category")
	activities := h.store.Activities(category)

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"categories": h.store.Categories(),
		"count":      len(activities),
	})
}
