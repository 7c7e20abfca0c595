package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"prepzone/internal/config"
	"prepzone/internal/model"
	"prepzone/internal/repository"
	"prepzone/internal/service"
	"prepzone/internal/transport/rest/middleware"
)

// PlayerHandler handles registration, profile, and progression endpoints
type PlayerHandler struct {
	authSvc    *service.AuthService
	ledgerSvc  *service.LedgerService
	recordRepo repository.RecordRepo
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authSvc *service.AuthService, ledgerSvc *service.LedgerService, recordRepo repository.RecordRepo) *PlayerHandler {
	return &PlayerHandler{
		authSvc:    authSvc,
		ledgerSvc:  ledgerSvc,
		recordRepo: recordRepo,
	}
}

// Register handles POST /v1/players
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ledger, err := h.ledgerSvc.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.authSvc.GeneratePlayerToken(ledger.PlayerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, &model.RegisterResponse{
		PlayerID: ledger.PlayerID,
		Token:    token,
		Ledger:   ledger,
	})
}

// Me handles GET /v1/players/me
func (h *PlayerHandler) Me(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	ledger, err := h.ledgerSvc.Get(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

// UpdateMe handles PATCH /v1/players/me
func (h *PlayerHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	var update service.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ledger, err := h.ledgerSvc.UpdateProfile(r.Context(), playerID, &update)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

// Records handles GET /v1/players/me/records
func (h *PlayerHandler) Records(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	records, err := h.recordRepo.GetByPlayerID(r.Context(), playerID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*model.GameRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Leaderboard handles GET /v1/leaderboard
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	entries, err := h.ledgerSvc.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service sentinel errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrBadTimer),
		errors.Is(err, service.ErrBadChoice),
		errors.Is(err, service.ErrNicknameRequired),
		errors.Is(err, service.ErrUnknownLanguage),
		errors.Is(err, service.ErrUnknownContact),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, config.ErrInvalidAPIKey):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrWrongPhase),
		errors.Is(err, service.ErrAlreadyAnswered),
		errors.Is(err, service.ErrNotAnswered),
		errors.Is(err, service.ErrNoTimer),
		errors.Is(err, service.ErrTimerNotExpired):
		return http.StatusConflict
	case errors.Is(err, service.ErrAINotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
