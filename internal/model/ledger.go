package model

import (
	"math"
	"time"
)

// CategoryStats are lifetime counters for one scenario category.
type CategoryStats struct {
	Total   int `json:"total" bson:"total"`
	Perfect int `json:"perfect" bson:"perfect"`
}

// Ledger is the persistent progression record for one player. It is mutated
// only through the ledger service operations (unlock, award XP, record
// outcome) and every mutation is written through to MongoDB immediately.
type Ledger struct {
	PlayerID     string                   `json:"playerId" bson:"_id"`
	Nickname     string                   `json:"nickname" bson:"nickname"`
	Level        int                      `json:"level" bson:"level"`
	XP           int                      `json:"xp" bson:"xp"`
	Achievements []string                 `json:"achievements" bson:"achievements"`
	Stats        map[string]CategoryStats `json:"stats" bson:"stats"`
	Language     string                   `json:"language" bson:"language"`
	Location     string                   `json:"location,omitempty" bson:"location,omitempty"`
	SoundEnabled bool                     `json:"soundEnabled" bson:"soundEnabled"`
	CreatedAt    time.Time                `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt" bson:"updatedAt"`
}

// XPToNextLevel is the XP required to advance from the given level:
// floor(100 * 1.5^(level-1)).
func XPToNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(100 * math.Pow(1.5, float64(level-1))))
}

// HasAchievement reports whether id is already unlocked.
func (l *Ledger) HasAchievement(id string) bool {
	for _, a := range l.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Languages maps supported language codes to the display names used in
// prompts.
var Languages = map[string]string{
	"en":  "English",
	"pcm": "Nigerian Pidgin",
	"ha":  "Hausa",
	"yo":  "Yoruba",
	"ig":  "Igbo",
}

// LanguageName resolves a stored language code to its prompt display name,
// defaulting to English.
func LanguageName(code string) string {
	if name, ok := Languages[code]; ok {
		return name
	}
	return "English"
}
