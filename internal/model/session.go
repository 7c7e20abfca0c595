package model

import "time"

// GamePhase is the current phase of a training session.
type GamePhase string

const (
	PhaseCategorySelection GamePhase = "category_selection"
	PhaseLoading           GamePhase = "loading"
	PhaseGame              GamePhase = "game"
	PhaseGameOver          GamePhase = "game_over"
	PhaseError             GamePhase = "error"
)

// Scenario pairs the active question with its illustrative image.
type Scenario struct {
	ImageURL string   `json:"imageUrl"`
	Question Question `json:"question"`
}

// AnsweredQuestion is one immutable entry in the session transcript.
// Appended once per answer and never mutated; the transcript is serialized
// into the end-of-session summary prompt.
type AnsweredQuestion struct {
	Question      string `json:"question" bson:"question"`
	UserChoice    string `json:"userChoice" bson:"userChoice"`
	CorrectChoice string `json:"correctChoice" bson:"correctChoice"`
	IsCorrect     bool   `json:"isCorrect" bson:"isCorrect"`
}

// GameResult holds the end-of-session outcome shown on the game-over screen.
type GameResult struct {
	Summary    string `json:"summary"`
	FinalScore int    `json:"finalScore"`
	BaseXP     int    `json:"baseXp"`
	BonusXP    int    `json:"bonusXp"`
	TotalXP    int    `json:"totalXp"`
	LeveledUp  bool   `json:"leveledUp"`
	Level      int    `json:"level"`
}

// Session is the ephemeral state of one training run. It lives in Redis for
// the duration of the run and is destroyed when the player returns to
// category selection.
type Session struct {
	PlayerID       string             `json:"playerId"`
	Phase          GamePhase          `json:"phase"`
	CategoryKey    string             `json:"categoryKey"`
	TimerSec       int                `json:"timerSec"` // 0 means no timer
	Score          int                `json:"score"`    // clamped to [0,100]
	QuestionNumber int                `json:"questionNumber"`
	Scenario       *Scenario          `json:"scenario,omitempty"`
	Answered       []AnsweredQuestion `json:"answered"`
	BonusXP        int                `json:"bonusXp"`
	AnsweredCurrent bool              `json:"answeredCurrent"`
	LastChoice     int                `json:"lastChoice"`
	QuestionAskedAt time.Time         `json:"questionAskedAt"`
	ErrorMessage   string             `json:"errorMessage,omitempty"`
	Result         *GameResult        `json:"result,omitempty"`
	StartedAt      time.Time          `json:"startedAt"`
}

// CorrectCount returns how many transcript entries were answered correctly.
func (s *Session) CorrectCount() int {
	n := 0
	for _, a := range s.Answered {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// TimeRemaining returns the whole seconds left on the question timer at the
// given instant, or 0 when no timer is configured. Never negative.
func (s *Session) TimeRemaining(now time.Time) int {
	if s.TimerSec == 0 {
		return 0
	}
	elapsed := int(now.Sub(s.QuestionAskedAt).Seconds())
	remaining := s.TimerSec - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ClampScore bounds a safety score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
