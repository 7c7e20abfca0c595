package handler

import (
	"net/http"

	"prepzone/internal/model"
)

// CatalogHandler serves the static game catalogs the client renders from
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Get handles GET /v1/catalog
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories":   model.Categories,
		"timerOptions": model.TimerOptions,
		"achievements": model.AchievementCatalog,
		"languages":    model.Languages,
		"contacts":     model.ChatContacts,
	})
}
