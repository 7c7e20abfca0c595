package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GameRecord is the durable archive of one completed training session.
type GameRecord struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PlayerID    string             `json:"playerId" bson:"playerId"`
	CategoryKey string             `json:"categoryKey" bson:"categoryKey"`
	FinalScore  int                `json:"finalScore" bson:"finalScore"`
	BaseXP      int                `json:"baseXp" bson:"baseXp"`
	BonusXP     int                `json:"bonusXp" bson:"bonusXp"`
	TotalXP     int                `json:"totalXp" bson:"totalXp"`
	Questions   int                `json:"questions" bson:"questions"`
	Transcript  []AnsweredQuestion `json:"transcript" bson:"transcript"`
	TimerSec    int                `json:"timerSec" bson:"timerSec"`
	EndedAt     time.Time          `json:"endedAt" bson:"endedAt"`
}
