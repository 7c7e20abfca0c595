package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepzone/internal/model"
)

// RecordRepo handles MongoDB operations for completed-session records.
type RecordRepo interface {
	Create(ctx context.Context, record *model.GameRecord) error
	GetByPlayerID(ctx context.Context, playerID string, limit int) ([]*model.GameRecord, error)
}

type recordRepo struct {
	collection *mongo.Collection
}

// NewRecordRepo creates a new game-record repository.
func NewRecordRepo(db *mongo.Database) RecordRepo {
	return &recordRepo{
		collection: db.Collection("game_records"),
	}
}

func (r *recordRepo) Create(ctx context.Context, record *model.GameRecord) error {
	if record.EndedAt.IsZero() {
		record.EndedAt = time.Now()
	}
	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid
	}
	return nil
}

func (r *recordRepo) GetByPlayerID(ctx context.Context, playerID string, limit int) ([]*model.GameRecord, error) {
	opts := options.Find().
		SetSort(bson.M{"endedAt": -1}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"playerId": playerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.GameRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
