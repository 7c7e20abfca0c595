package handler

import (
	"encoding/json"
	"net/http"

	"prepzone/internal/service"
)

// SetupHandler handles API key setup endpoints
type SetupHandler struct {
	setupSvc *service.SetupService
}

// NewSetupHandler creates a new setup handler
func NewSetupHandler(setupSvc *service.SetupService) *SetupHandler {
	return &SetupHandler{setupSvc: setupSvc}
}

// Status handles GET /v1/setup
func (h *SetupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.setupSvc.Status())
}

// KeyRequest is the request body for installing an API key
type KeyRequest struct {
	APIKey string `json:"apiKey"`
}

// SetKey handles POST /v1/setup/key
func (h *SetupHandler) SetKey(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.setupSvc.SetKey(r.Context(), req.APIKey); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.setupSvc.Status())
}
