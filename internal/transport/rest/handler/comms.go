package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"prepzone/internal/service"
	"prepzone/internal/transport/rest/middleware"
)

// CommsHandler handles communications-hub endpoints
type CommsHandler struct {
	commsSvc *service.CommsService
}

// NewCommsHandler creates a new comms handler
func NewCommsHandler(commsSvc *service.CommsService) *CommsHandler {
	return &CommsHandler{commsSvc: commsSvc}
}

// Broadcast handles POST /v1/comms/broadcast
func (h *CommsHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	broadcast, err := h.commsSvc.Broadcast(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, broadcast)
}

// Contacts handles GET /v1/comms/contacts
func (h *CommsHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.commsSvc.Contacts())
}

// History handles GET /v1/comms/chats/{contactId}
func (h *CommsHandler) History(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())
	contactID := mux.Vars(r)["contactId"]

	history, err := h.commsSvc.History(r.Context(), playerID, contactID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// SendRequest is the request body for sending a chat message
type SendRequest struct {
	Text string `json:"text"`
}

// Send handles POST /v1/comms/chats/{contactId}
func (h *CommsHandler) Send(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())
	contactID := mux.Vars(r)["contactId"]

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	history, err := h.commsSvc.SendMessage(r.Context(), playerID, contactID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Clear handles DELETE /v1/comms/chats/{contactId}
func (h *CommsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())
	contactID := mux.Vars(r)["contactId"]

	if err := h.commsSvc.ClearHistory(r.Context(), playerID, contactID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Recommendations handles GET /v1/comms/recommendations
func (h *CommsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	recs, err := h.commsSvc.Recommendations(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
