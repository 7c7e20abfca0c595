package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"prepzone/internal/model"
)

// LedgerRepo handles MongoDB operations for progression ledgers.
type LedgerRepo interface {
	Create(ctx context.Context, ledger *model.Ledger) error
	GetByPlayerID(ctx context.Context, playerID string) (*model.Ledger, error)
	Update(ctx context.Context, ledger *model.Ledger) error
}

type ledgerRepo struct {
	collection *mongo.Collection
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(db *mongo.Database) LedgerRepo {
	return &ledgerRepo{
		collection: db.Collection("ledgers"),
	}
}

func (r *ledgerRepo) Create(ctx context.Context, ledger *model.Ledger) error {
	ledger.CreatedAt = time.Now()
	ledger.UpdatedAt = ledger.CreatedAt
	_, err := r.collection.InsertOne(ctx, ledger)
	return err
}

func (r *ledgerRepo) GetByPlayerID(ctx context.Context, playerID string) (*model.Ledger, error) {
	var ledger model.Ledger
	err := r.collection.FindOne(ctx, bson.M{"_id": playerID}).Decode(&ledger)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepo) Update(ctx context.Context, ledger *model.Ledger) error {
	ledger.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ledger.PlayerID}, ledger)
	return err
}
