package handler

import (
	"encoding/json"
	"net/http"

	"prepzone/internal/service"
	"prepzone/internal/transport/rest/middleware"
)

// SessionHandler handles training-session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// StartRequest is the request body for starting a session
type StartRequest struct {
	CategoryKey string `json:"categoryKey"`
	TimerSec    int    `json:"timerSec"`
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionSvc.StartGame(r.Context(), playerID, req.CategoryKey, req.TimerSec)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Current handles GET /v1/sessions/current
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	session, err := h.sessionSvc.Get(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// AnswerRequest is the request body for answering a question
type AnswerRequest struct {
	ChoiceIndex int `json:"choiceIndex"`
}

// Answer handles POST /v1/sessions/current/answer
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionSvc.SubmitAnswer(r.Context(), playerID, req.ChoiceIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Timeout handles POST /v1/sessions/current/timeout
func (h *SessionHandler) Timeout(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	session, err := h.sessionSvc.ResolveTimeout(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Next handles POST /v1/sessions/current/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	session, err := h.sessionSvc.AdvanceQuestion(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// End handles POST /v1/sessions/current/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	session, err := h.sessionSvc.EndGame(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Restart handles POST /v1/sessions/current/restart
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	session, err := h.sessionSvc.Restart(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Abandon handles DELETE /v1/sessions/current
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.sessionSvc.Abandon(r.Context(), playerID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}
