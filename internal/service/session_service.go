package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"prepzone/internal/cache"
	"prepzone/internal/model"
	"prepzone/internal/repository"
)

// Scoring and reward tuning for a training run.
const (
	startScore       = 100
	correctDelta     = 5
	incorrectDelta   = 20
	speedBonusXP     = 15
	quickThinkerSecs = 10 // seconds that must remain for the quick-thinker unlock
	baseXPPerCorrect = 20
	unlockScoreGate  = 70 // category achievements require score above this
)

// noSummaryMessage stands in when summary generation fails; the run still
// completes with full rewards.
const noSummaryMessage = "No performance summary is available for this session, but your results and rewards have been saved."

var (
	ErrNoSession       = errors.New("no active session")
	ErrWrongPhase      = errors.New("operation not valid in current phase")
	ErrAlreadyAnswered = errors.New("current question already answered")
	ErrNotAnswered     = errors.New("current question not answered yet")
	ErrBadChoice       = errors.New("choice index out of range")
	ErrNoTimer         = errors.New("session has no timer")
	ErrTimerNotExpired = errors.New("question timer has not expired")
	ErrUnknownCategory = errors.New("unknown scenario category")
	ErrBadTimer        = errors.New("timer duration not permitted")
)

// ContentFetcher is the slice of AI generation the session engine depends
// on, kept narrow so tests can substitute a fake.
type ContentFetcher interface {
	FetchInitialQuestion(ctx context.Context, categoryTitle, language, location string) (*model.Question, error)
	FetchNextQuestion(ctx context.Context, categoryTitle, language, location, previousContext string) (*model.Question, error)
	FetchSessionSummary(ctx context.Context, categoryTitle, language string, transcript []model.AnsweredQuestion) (string, error)
}

// SessionService drives the training-session state machine. A player has at
// most one live session, held in Redis; the durable outcome is written to
// the ledger and the game-record archive at end of game.
type SessionService struct {
	sessions  cache.SessionCache
	records   repository.RecordRepo
	content   ContentFetcher
	ledgerSvc *LedgerService
	now       func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(sessions cache.SessionCache, records repository.RecordRepo, content ContentFetcher, ledgerSvc *LedgerService) *SessionService {
	return &SessionService{
		sessions:  sessions,
		records:   records,
		content:   content,
		ledgerSvc: ledgerSvc,
		now:       time.Now,
	}
}

// Get returns the player's live session.
func (s *SessionService) Get(ctx context.Context, playerID string) (*model.Session, error) {
	session, err := s.sessions.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}

// StartGame begins a new run for the given category and timer setting,
// replacing any previous session. Generation failures do not error the
// call; they move the session to the error phase, which the client resolves
// by restarting or abandoning.
func (s *SessionService) StartGame(ctx context.Context, playerID, categoryKey string, timerSec int) (*model.Session, error) {
	category := model.CategoryByKey(categoryKey)
	if category == nil {
		return nil, ErrUnknownCategory
	}
	if !model.ValidTimer(timerSec) {
		return nil, ErrBadTimer
	}

	ledger, err := s.ledgerSvc.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		PlayerID:       playerID,
		Phase:          model.PhaseLoading,
		CategoryKey:    categoryKey,
		TimerSec:       timerSec,
		Score:          startScore,
		QuestionNumber: 1,
		Answered:       []model.AnsweredQuestion{},
		LastChoice:     -1,
		StartedAt:      s.now(),
	}
	if err := s.sessions.Set(ctx, playerID, session); err != nil {
		return nil, err
	}

	question, err := s.content.FetchInitialQuestion(ctx, category.Title, model.LanguageName(ledger.Language), ledger.Location)
	if err != nil {
		return s.failSession(ctx, session, err)
	}

	session.Scenario = &model.Scenario{
		ImageURL: ScenarioImage(categoryKey),
		Question: *question,
	}
	session.Phase = model.PhaseGame
	session.QuestionAskedAt = s.now()
	if err := s.sessions.Set(ctx, playerID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitAnswer records the player's choice for the current question and
// applies scoring, speed bonus, and the quick-thinker unlock.
func (s *SessionService) SubmitAnswer(ctx context.Context, playerID string, choiceIndex int) (*model.Session, error) {
	session, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if session.Phase != model.PhaseGame {
		return nil, ErrWrongPhase
	}
	if session.AnsweredCurrent {
		return nil, ErrAlreadyAnswered
	}

	question := &session.Scenario.Question
	if choiceIndex < 0 || choiceIndex >= len(question.Choices) {
		return nil, ErrBadChoice
	}

	s.applyAnswer(ctx, session, choiceIndex, session.TimeRemaining(s.now()))

	if err := s.sessions.Set(ctx, playerID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ResolveTimeout handles an expired question timer by auto-selecting an
// incorrect choice. Rejected while time remains, so a racing answer wins.
func (s *SessionService) ResolveTimeout(ctx context.Context, playerID string) (*model.Session, error) {
	session, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if session.Phase != model.PhaseGame {
		return nil, ErrWrongPhase
	}
	if session.TimerSec == 0 {
		return nil, ErrNoTimer
	}
	if session.AnsweredCurrent {
		return nil, ErrAlreadyAnswered
	}
	if session.TimeRemaining(s.now()) > 0 {
		return nil, ErrTimerNotExpired
	}

	s.applyAnswer(ctx, session, session.Scenario.Question.TimeoutChoice(), 0)

	if err := s.sessions.Set(ctx, playerID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// applyAnswer mutates the session for one answered question. remaining is
// the timer seconds left at answer time; a timeout passes 0.
func (s *SessionService) applyAnswer(ctx context.Context, session *model.Session, choiceIndex, remaining int) {
	question := &session.Scenario.Question
	correct := choiceIndex == question.CorrectChoiceIndex

	if correct {
		session.Score = model.ClampScore(session.Score + correctDelta)
	} else {
		session.Score = model.ClampScore(session.Score - incorrectDelta)
	}

	if correct && session.TimerSec > 0 {
		if remaining > session.TimerSec/2 {
			session.BonusXP += speedBonusXP
		}
		if remaining > quickThinkerSecs {
			if _, err := s.ledgerSvc.UnlockAchievement(ctx, session.PlayerID, "quick_thinker"); err != nil {
				log.Printf("quick_thinker unlock failed for %s: %v", session.PlayerID, err)
			}
		}
	}

	session.Answered = append(session.Answered, model.AnsweredQuestion{
		Question:      question.Question,
		UserChoice:    question.Choices[choiceIndex],
		CorrectChoice: question.Choices[question.CorrectChoiceIndex],
		IsCorrect:     correct,
	})
	session.AnsweredCurrent = true
	session.LastChoice = choiceIndex
}

// AdvanceQuestion fetches the next question, carrying forward what just
// happened so the scenario evolves coherently.
func (s *SessionService) AdvanceQuestion(ctx context.Context, playerID string) (*model.Session, error) {
	session, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if session.Phase != model.PhaseGame {
		return nil, ErrWrongPhase
	}
	if !session.AnsweredCurrent {
		return nil, ErrNotAnswered
	}

	ledger, err := s.ledgerSvc.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	category := model.CategoryByKey(session.CategoryKey)

	previousContext := s.buildAdvanceContext(session)
	question, err := s.content.FetchNextQuestion(ctx, category.Title, model.LanguageName(ledger.Language), ledger.Location, previousContext)
	if err != nil {
		return s.failSession(ctx, session, err)
	}

	session.Scenario.Question = *question
	session.QuestionNumber++
	session.AnsweredCurrent = false
	session.LastChoice = -1
	session.QuestionAskedAt = s.now()
	if err := s.sessions.Set(ctx, playerID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// buildAdvanceContext summarizes the just-answered question for the next
// generation prompt.
func (s *SessionService) buildAdvanceContext(session *model.Session) string {
	last := session.Answered[len(session.Answered)-1]
	question := &session.Scenario.Question

	outcome := "That was not the correct choice."
	if last.IsCorrect {
		outcome = "That was the correct choice."
	}
	feedback := ""
	if session.LastChoice >= 0 && session.LastChoice < len(question.Feedback) {
		feedback = question.Feedback[session.LastChoice]
	}
	return fmt.Sprintf("What happened so far: the user was asked %q and chose %q. %s Feedback shown: %q.",
		last.Question, last.UserChoice, outcome, feedback)
}

// EndGame closes the run: converts the transcript into XP, applies
// level-ups, unlocks achievements, archives the record, and produces the
// game-over result.
func (s *SessionService) EndGame(ctx context.Context, playerID string) (*model.Session, error) {
	session, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if session.Phase != model.PhaseGame {
		return nil, ErrWrongPhase
	}

	category := model.CategoryByKey(session.CategoryKey)
	baseXP := baseXPPerCorrect * session.CorrectCount()
	totalXP := baseXP + session.BonusXP

	ledger, leveledUp, err := s.ledgerSvc.AwardXP(ctx, playerID, totalXP)
	if err != nil {
		return nil, err
	}

	summary, err := s.content.FetchSessionSummary(ctx, category.Title, model.LanguageName(ledger.Language), session.Answered)
	if err != nil {
		log.Printf("summary generation failed for %s: %v", playerID, err)
		summary = noSummaryMessage
	}

	s.unlockEndGame(ctx, session, category, ledger)

	record := &model.GameRecord{
		PlayerID:    playerID,
		CategoryKey: session.CategoryKey,
		FinalScore:  session.Score,
		BaseXP:      baseXP,
		BonusXP:     session.BonusXP,
		TotalXP:     totalXP,
		Questions:   len(session.Answered),
		Transcript:  session.Answered,
		TimerSec:    session.TimerSec,
		EndedAt:     s.now(),
	}
	if err := s.records.Create(ctx, record); err != nil {
		// The archive is supplementary; the ledger already holds the rewards.
		log.Printf("game record archive failed for %s: %v", playerID, err)
	}

	session.Phase = model.PhaseGameOver
	session.Result = &model.GameResult{
		Summary:    summary,
		FinalScore: session.Score,
		BaseXP:     baseXP,
		BonusXP:    session.BonusXP,
		TotalXP:    totalXP,
		LeveledUp:  leveledUp,
		Level:      ledger.Level,
	}
	if err := s.sessions.Set(ctx, playerID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// unlockEndGame applies the end-of-run achievement rules and records the
// category outcome.
func (s *SessionService) unlockEndGame(ctx context.Context, session *model.Session, category *model.Category, ledger *model.Ledger) {
	unlock := func(id string) {
		if _, err := s.ledgerSvc.UnlockAchievement(ctx, session.PlayerID, id); err != nil {
			log.Printf("%s unlock failed for %s: %v", id, session.PlayerID, err)
		}
	}

	unlock("first_game")
	if session.Score == 100 {
		unlock("perfect_score")
	}
	if session.Score > unlockScoreGate {
		if category.AchievementID != "" {
			unlock(category.AchievementID)
		}
		if err := s.ledgerSvc.RecordCategoryOutcome(ctx, session.PlayerID, session.CategoryKey, session.Score == 100); err != nil {
			log.Printf("category outcome record failed for %s: %v", session.PlayerID, err)
		}
	}
	if ledger.Level >= 5 {
		unlock("level_5")
	}
}

// Restart begins a fresh run with the same category and timer as the
// current session.
func (s *SessionService) Restart(ctx context.Context, playerID string) (*model.Session, error) {
	session, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return s.StartGame(ctx, playerID, session.CategoryKey, session.TimerSec)
}

// Abandon discards the live session and returns the player to category
// selection. Ledger state is untouched.
func (s *SessionService) Abandon(ctx context.Context, playerID string) error {
	return s.sessions.Delete(ctx, playerID)
}

// failSession moves the session to the error phase with a client-visible
// message. Infra failures writing the phase still surface as errors.
func (s *SessionService) failSession(ctx context.Context, session *model.Session, cause error) (*model.Session, error) {
	session.Phase = model.PhaseError
	session.ErrorMessage = cause.Error()
	if err := s.sessions.Set(ctx, session.PlayerID, session); err != nil {
		return nil, err
	}
	return session, nil
}
