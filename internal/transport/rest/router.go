package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"prepzone/internal/repository"
	"prepzone/internal/service"
	"prepzone/internal/transport/rest/handler"
	"prepzone/internal/transport/rest/middleware"
	"prepzone/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	LedgerService  *service.LedgerService
	SessionService *service.SessionService
	CommsService   *service.CommsService
	SetupService   *service.SetupService
	RecordRepo     repository.RecordRepo
	WSHub          *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	playerHandler := handler.NewPlayerHandler(c.AuthService, c.LedgerService, c.RecordRepo)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	commsHandler := handler.NewCommsHandler(c.CommsService)
	setupHandler := handler.NewSetupHandler(c.SetupService)
	catalogHandler := handler.NewCatalogHandler()
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/players", playerHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/catalog", catalogHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/setup", setupHandler.Status).Methods("GET", "OPTIONS")
	v1.HandleFunc("/setup/key", setupHandler.SetKey).Methods("POST", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/player", wsHandler.PlayerWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/players/me", playerHandler.Me).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/players/me", playerHandler.UpdateMe).Methods("PATCH", "OPTIONS")
	playerRoutes.HandleFunc("/players/me/records", playerHandler.Records).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/leaderboard", playerHandler.Leaderboard).Methods("GET", "OPTIONS")

	playerRoutes.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/current", sessionHandler.Current).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/current", sessionHandler.Abandon).Methods("DELETE", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/current/answer", sessionHandler.Answer).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/current/timeout", sessionHandler.Timeout).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/current/next", sessionHandler.Next).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/current/end", sessionHandler.End).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/current/restart", sessionHandler.Restart).Methods("POST", "OPTIONS")

	playerRoutes.HandleFunc("/comms/broadcast", commsHandler.Broadcast).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/comms/contacts", commsHandler.Contacts).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/comms/chats/{contactId}", commsHandler.History).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/comms/chats/{contactId}", commsHandler.Send).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/comms/chats/{contactId}", commsHandler.Clear).Methods("DELETE", "OPTIONS")
	playerRoutes.HandleFunc("/comms/recommendations", commsHandler.Recommendations).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
