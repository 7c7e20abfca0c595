package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"prepzone/internal/cache"
	"prepzone/internal/model"
	"prepzone/internal/repository"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNicknameRequired   = errors.New("nickname is required")
	ErrUnknownAchievement = errors.New("unknown achievement id")
	ErrUnknownLanguage    = errors.New("unknown language code")
)

// LedgerService owns the persistent progression record of each player:
// level, XP, achievements, and per-category stats. Every mutation is written
// through to MongoDB before it is acknowledged.
type LedgerService struct {
	ledgerRepo  repository.LedgerRepo
	leaderboard cache.LeaderboardCache
	notifier    Notifier
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo repository.LedgerRepo, leaderboard cache.LeaderboardCache) *LedgerService {
	return &LedgerService{
		ledgerRepo:  ledgerRepo,
		leaderboard: leaderboard,
	}
}

// SetNotifier wires the WebSocket hub in after construction.
func (s *LedgerService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *LedgerService) notify(playerID, eventType string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.NotifyPlayer(playerID, eventType, payload)
	}
}

// Register creates a new player with a fresh ledger.
func (s *LedgerService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Ledger, error) {
	if req.Nickname == "" {
		return nil, ErrNicknameRequired
	}
	language := req.Language
	if language == "" {
		language = "en"
	}
	if _, ok := model.Languages[language]; !ok {
		return nil, ErrUnknownLanguage
	}

	ledger := &model.Ledger{
		PlayerID:     "p_" + uuid.New().String()[:8],
		Nickname:     req.Nickname,
		Level:        1,
		XP:           0,
		Achievements: []string{},
		Stats:        map[string]model.CategoryStats{},
		Language:     language,
		Location:     req.Location,
		SoundEnabled: true,
	}

	if err := s.ledgerRepo.Create(ctx, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// Get loads a player's ledger.
func (s *LedgerService) Get(ctx context.Context, playerID string) (*model.Ledger, error) {
	ledger, err := s.ledgerRepo.GetByPlayerID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, ErrPlayerNotFound
	}
	return ledger, nil
}

// UnlockAchievement records an achievement on the ledger. Unlocks are
// idempotent: the first call persists and pushes a WebSocket event, repeats
// are no-ops. Returns whether this call performed the unlock.
func (s *LedgerService) UnlockAchievement(ctx context.Context, playerID, achievementID string) (bool, error) {
	achievement := model.AchievementByID(achievementID)
	if achievement == nil {
		return false, ErrUnknownAchievement
	}

	ledger, err := s.Get(ctx, playerID)
	if err != nil {
		return false, err
	}
	if ledger.HasAchievement(achievementID) {
		return false, nil
	}

	ledger.Achievements = append(ledger.Achievements, achievementID)
	if err := s.ledgerRepo.Update(ctx, ledger); err != nil {
		return false, err
	}

	s.notify(playerID, "achievement_unlocked", map[string]interface{}{
		"achievement": achievement,
	})
	return true, nil
}

// AwardXP adds XP to the ledger and applies level-ups. A large award can
// cross several thresholds in one call; each level consumes
// floor(100 * 1.5^(level-1)) XP. Returns the updated ledger and whether at
// least one level was gained.
func (s *LedgerService) AwardXP(ctx context.Context, playerID string, amount int) (*model.Ledger, bool, error) {
	ledger, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, false, err
	}
	if amount < 0 {
		amount = 0
	}

	ledger.XP += amount
	leveledUp := false
	for ledger.XP >= model.XPToNextLevel(ledger.Level) {
		ledger.XP -= model.XPToNextLevel(ledger.Level)
		ledger.Level++
		leveledUp = true
	}

	if err := s.ledgerRepo.Update(ctx, ledger); err != nil {
		return nil, false, err
	}

	if amount > 0 {
		if err := s.leaderboard.AddXP(ctx, playerID, amount); err != nil {
			// Leaderboard is a derived view; the ledger stays authoritative.
			log.Printf("leaderboard update failed for %s: %v", playerID, err)
		}
	}

	if leveledUp {
		s.notify(playerID, "level_up", map[string]interface{}{
			"level":    ledger.Level,
			"xp":       ledger.XP,
			"xpToNext": model.XPToNextLevel(ledger.Level),
		})
	}
	return ledger, leveledUp, nil
}

// RecordCategoryOutcome bumps the lifetime counters for one category run.
func (s *LedgerService) RecordCategoryOutcome(ctx context.Context, playerID, categoryKey string, perfect bool) error {
	ledger, err := s.Get(ctx, playerID)
	if err != nil {
		return err
	}
	if ledger.Stats == nil {
		ledger.Stats = map[string]model.CategoryStats{}
	}

	stats := ledger.Stats[categoryKey]
	stats.Total++
	if perfect {
		stats.Perfect++
	}
	ledger.Stats[categoryKey] = stats

	return s.ledgerRepo.Update(ctx, ledger)
}

// ProfileUpdate carries optional profile changes; nil fields are untouched.
type ProfileUpdate struct {
	Language     *string `json:"language,omitempty"`
	Location     *string `json:"location,omitempty"`
	SoundEnabled *bool   `json:"soundEnabled,omitempty"`
}

// UpdateProfile applies partial profile changes to the ledger.
func (s *LedgerService) UpdateProfile(ctx context.Context, playerID string, update *ProfileUpdate) (*model.Ledger, error) {
	ledger, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if update.Language != nil {
		if _, ok := model.Languages[*update.Language]; !ok {
			return nil, ErrUnknownLanguage
		}
		ledger.Language = *update.Language
	}
	if update.Location != nil {
		ledger.Location = *update.Location
	}
	if update.SoundEnabled != nil {
		ledger.SoundEnabled = *update.SoundEnabled
	}

	if err := s.ledgerRepo.Update(ctx, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// Leaderboard returns the top lifetime-XP players with nicknames resolved
// from their ledgers.
func (s *LedgerService) Leaderboard(ctx context.Context, limit int) ([]cache.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	entries, err := s.leaderboard.GetTop(ctx, limit)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		ledger, err := s.ledgerRepo.GetByPlayerID(ctx, entries[i].PlayerID)
		if err != nil || ledger == nil {
			continue
		}
		entries[i].Nickname = ledger.Nickname
	}
	return entries, nil
}
