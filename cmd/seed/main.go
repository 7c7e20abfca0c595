package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepzone/internal/model"
)

// Seeds a few demo ledgers so the leaderboard and dashboard have something
// to show on a fresh install.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "prepzone"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	coll := client.Database(dbName).Collection("ledgers")
	now := time.Now()

	ledgers := []model.Ledger{
		{
			PlayerID:     "p_demo_ada",
			Nickname:     "Ada",
			Level:        3,
			XP:           80,
			Achievements: []string{"first_game", "quick_thinker", "fire_fighter"},
			Stats: map[string]model.CategoryStats{
				"urbanFire":     {Total: 4, Perfect: 1},
				"floodResponse": {Total: 1},
			},
			Language:     "en",
			Location:     "Lagos",
			SoundEnabled: true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			PlayerID:     "p_demo_musa",
			Nickname:     "Musa",
			Level:        2,
			XP:           40,
			Achievements: []string{"first_game", "comms_check"},
			Stats: map[string]model.CategoryStats{
				"roadAccident": {Total: 2},
			},
			Language:     "ha",
			Location:     "Kano",
			SoundEnabled: true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			PlayerID:     "p_demo_ngozi",
			Nickname:     "Ngozi",
			Level:        5,
			XP:           120,
			Achievements: []string{"first_game", "perfect_score", "flood_expert", "level_5"},
			Stats: map[string]model.CategoryStats{
				"floodResponse":       {Total: 6, Perfect: 3},
				"marketplaceStampede": {Total: 2, Perfect: 1},
			},
			Language:     "ig",
			Location:     "Enugu",
			SoundEnabled: false,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	for _, ledger := range ledgers {
		opts := options.Replace().SetUpsert(true)
		if _, err := coll.ReplaceOne(ctx, bson.M{"_id": ledger.PlayerID}, ledger, opts); err != nil {
			log.Fatalf("Failed to seed ledger %s: %v", ledger.PlayerID, err)
		}
		fmt.Printf("Seeded ledger %s (%s, level %d)\n", ledger.PlayerID, ledger.Nickname, ledger.Level)
	}

	fmt.Println("Done.")
}
