package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepzone/internal/cache"
	"prepzone/internal/config"
	"prepzone/internal/repository"
	"prepzone/internal/service"
	"prepzone/internal/transport/rest"
	"prepzone/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()
	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Question:  %s", aiConfig.Models.Question)
	log.Printf("  Summary:   %s", aiConfig.Models.Summary)
	log.Printf("  Broadcast: %s", aiConfig.Models.Broadcast)
	log.Printf("  Chat:      %s", aiConfig.Models.Chat)
	log.Printf("  Recs:      %s", aiConfig.Models.Recommendations)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:   configured")
	} else {
		log.Println("  API Key:   NOT SET (setup endpoint required)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	ledgerRepo := repository.NewLedgerRepo(db)
	recordRepo := repository.NewRecordRepo(db)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)
	chatCache := cache.NewChatCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)
	credentials := cache.NewCredentialCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	setupSvc := service.NewSetupService(ctx, aiConfig, credentials)
	contentSvc := service.NewContentService(aiConfig)
	ledgerSvc := service.NewLedgerService(ledgerRepo, leaderboard)
	sessionSvc := service.NewSessionService(sessionCache, recordRepo, contentSvc, ledgerSvc)
	commsSvc := service.NewCommsService(contentSvc, chatCache, ledgerSvc)

	// Inject notifier (wsHub implements service.Notifier)
	ledgerSvc.SetNotifier(wsHub)
	commsSvc.SetNotifier(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:    authSvc,
		LedgerService:  ledgerSvc,
		SessionService: sessionSvc,
		CommsService:   commsSvc,
		SetupService:   setupSvc,
		RecordRepo:     recordRepo,
		WSHub:          wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/players")
		log.Println("  GET  /v1/catalog")
		log.Println("  GET/POST /v1/setup")
		log.Println("  POST /v1/sessions")
		log.Println("  GET/DELETE /v1/sessions/current")
		log.Println("  POST /v1/comms/broadcast")
		log.Println("  GET  /v1/leaderboard")
		log.Println("  WS   /v1/ws/player")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
