package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepzone/internal/model"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func scenarioQuestion(correct int) *model.Question {
	return &model.Question{
		Question:           "Smoke is filling the room. What now?",
		Choices:            []string{"Crawl low to the exit", "Stand and run", "Hide in a closet"},
		CorrectChoiceIndex: correct,
		Feedback:           []string{"Smoke rises, stay low.", "You will inhale smoke.", "Rescuers cannot find you."},
	}
}

type sessionFixture struct {
	svc      *SessionService
	ledger   *LedgerService
	content  *fakeContent
	records  *fakeRecordRepo
	notifier *fakeNotifier
	clock    *testClock
	playerID string
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	leaderboard := newFakeLeaderboard()
	notifier := &fakeNotifier{}
	ledgerSvc := NewLedgerService(newFakeLedgerRepo(), leaderboard)
	ledgerSvc.SetNotifier(notifier)

	content := &fakeContent{summary: "Solid decisions under pressure."}
	records := &fakeRecordRepo{}
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	svc := NewSessionService(newFakeSessionCache(), records, content, ledgerSvc)
	svc.now = clock.Now

	player := registerPlayer(t, ledgerSvc, "Ada")

	return &sessionFixture{
		svc:      svc,
		ledger:   ledgerSvc,
		content:  content,
		records:  records,
		notifier: notifier,
		clock:    clock,
		playerID: player.PlayerID,
	}
}

func (f *sessionFixture) start(t *testing.T, categoryKey string, timerSec int) *model.Session {
	t.Helper()
	session, err := f.svc.StartGame(context.Background(), f.playerID, categoryKey, timerSec)
	require.NoError(t, err)
	require.Equal(t, model.PhaseGame, session.Phase)
	return session
}

func TestStartGame(t *testing.T) {
	ctx := context.Background()

	t.Run("starts in the game phase with a full scenario", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}

		session := f.start(t, "urbanFire", 20)

		assert.Equal(t, 100, session.Score)
		assert.Equal(t, 1, session.QuestionNumber)
		assert.Equal(t, 20, session.TimerSec)
		assert.False(t, session.AnsweredCurrent)
		assert.Equal(t, -1, session.LastChoice)
		require.NotNil(t, session.Scenario)
		assert.NotEmpty(t, session.Scenario.ImageURL)
		assert.Equal(t, f.clock.Now(), session.QuestionAskedAt)
	})

	t.Run("rejects unknown categories and timers", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.StartGame(ctx, f.playerID, "earthquake", 20)
		assert.ErrorIs(t, err, ErrUnknownCategory)

		_, err = f.svc.StartGame(ctx, f.playerID, "urbanFire", 7)
		assert.ErrorIs(t, err, ErrBadTimer)
	})

	t.Run("generation failure lands in the error phase", func(t *testing.T) {
		f := newSessionFixture(t)
		// no questions queued

		session, err := f.svc.StartGame(ctx, f.playerID, "urbanFire", 0)
		require.NoError(t, err)
		assert.Equal(t, model.PhaseError, session.Phase)
		assert.NotEmpty(t, session.ErrorMessage)

		stored, err := f.svc.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.Equal(t, model.PhaseError, stored.Phase)
	})

	t.Run("replaces a previous session", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0), scenarioQuestion(1)}

		f.start(t, "urbanFire", 0)
		session := f.start(t, "floodResponse", 15)

		assert.Equal(t, "floodResponse", session.CategoryKey)
		assert.Empty(t, session.Answered)
	})
}

func TestSubmitAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("correct answer is clamped at 100", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		session, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)

		assert.Equal(t, 100, session.Score)
		assert.True(t, session.AnsweredCurrent)
		require.Len(t, session.Answered, 1)
		assert.True(t, session.Answered[0].IsCorrect)
		assert.Equal(t, "Crawl low to the exit", session.Answered[0].UserChoice)
	})

	t.Run("incorrect answer costs 20 points", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		session, err := f.svc.SubmitAnswer(ctx, f.playerID, 2)
		require.NoError(t, err)
		assert.Equal(t, 80, session.Score)
		assert.False(t, session.Answered[0].IsCorrect)
	})

	t.Run("only one answer per question", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)
		_, err = f.svc.SubmitAnswer(ctx, f.playerID, 1)
		assert.ErrorIs(t, err, ErrAlreadyAnswered)
	})

	t.Run("rejects out-of-range choices", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 3)
		assert.ErrorIs(t, err, ErrBadChoice)
		_, err = f.svc.SubmitAnswer(ctx, f.playerID, -1)
		assert.ErrorIs(t, err, ErrBadChoice)
	})

	t.Run("fast correct answer earns the speed bonus and quick thinker", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 30)

		f.clock.Advance(5 * time.Second) // 25s remaining: past half, past 10s
		session, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)

		assert.Equal(t, 15, session.BonusXP)
		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.True(t, ledger.HasAchievement("quick_thinker"))
	})

	t.Run("slow correct answer earns neither", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 20)

		f.clock.Advance(14 * time.Second) // 6s remaining
		session, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)

		assert.Zero(t, session.BonusXP)
		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.False(t, ledger.HasAchievement("quick_thinker"))
	})

	t.Run("no timer means no speed rewards", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		session, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)
		assert.Zero(t, session.BonusXP)

		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.False(t, ledger.HasAchievement("quick_thinker"))
	})

	t.Run("incorrect fast answer earns nothing", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 30)

		session, err := f.svc.SubmitAnswer(ctx, f.playerID, 1)
		require.NoError(t, err)
		assert.Zero(t, session.BonusXP)
	})
}

func TestResolveTimeout(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected while time remains", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 20)

		f.clock.Advance(10 * time.Second)
		_, err := f.svc.ResolveTimeout(ctx, f.playerID)
		assert.ErrorIs(t, err, ErrTimerNotExpired)
	})

	t.Run("auto-selects an incorrect choice after expiry", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 20)

		f.clock.Advance(21 * time.Second)
		session, err := f.svc.ResolveTimeout(ctx, f.playerID)
		require.NoError(t, err)

		assert.Equal(t, 80, session.Score)
		assert.True(t, session.AnsweredCurrent)
		require.Len(t, session.Answered, 1)
		assert.False(t, session.Answered[0].IsCorrect)
		assert.Zero(t, session.BonusXP)
	})

	t.Run("meaningless without a timer", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		_, err := f.svc.ResolveTimeout(ctx, f.playerID)
		assert.ErrorIs(t, err, ErrNoTimer)
	})

	t.Run("an answered question cannot time out", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 15)

		f.clock.Advance(3 * time.Second)
		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)

		f.clock.Advance(20 * time.Second)
		_, err = f.svc.ResolveTimeout(ctx, f.playerID)
		assert.ErrorIs(t, err, ErrAlreadyAnswered)
	})
}

func TestAdvanceQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("requires the current question to be answered", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		_, err := f.svc.AdvanceQuestion(ctx, f.playerID)
		assert.ErrorIs(t, err, ErrNotAnswered)
	})

	t.Run("moves to the next question with context", func(t *testing.T) {
		f := newSessionFixture(t)
		next := scenarioQuestion(1)
		next.Question = "The hallway is blocked. Where to?"
		f.content.questions = []*model.Question{scenarioQuestion(0), next}
		f.start(t, "urbanFire", 20)

		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)

		f.clock.Advance(8 * time.Second)
		session, err := f.svc.AdvanceQuestion(ctx, f.playerID)
		require.NoError(t, err)

		assert.Equal(t, 2, session.QuestionNumber)
		assert.False(t, session.AnsweredCurrent)
		assert.Equal(t, -1, session.LastChoice)
		assert.Equal(t, "The hallway is blocked. Where to?", session.Scenario.Question.Question)
		assert.Equal(t, f.clock.Now(), session.QuestionAskedAt)

		assert.Contains(t, f.content.lastContext, "Smoke is filling the room")
		assert.Contains(t, f.content.lastContext, "Crawl low to the exit")
		assert.Contains(t, f.content.lastContext, "Smoke rises, stay low.")
		assert.Contains(t, f.content.lastContext, "correct choice")
	})

	t.Run("generation failure lands in the error phase", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)

		session, err := f.svc.AdvanceQuestion(ctx, f.playerID)
		require.NoError(t, err)
		assert.Equal(t, model.PhaseError, session.Phase)
	})
}

func TestEndGame(t *testing.T) {
	ctx := context.Background()

	t.Run("full three-question run", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0), scenarioQuestion(1), scenarioQuestion(2)}
		f.start(t, "urbanFire", 0)

		// Two correct, one wrong: 100 -> 100 -> 100 -> 80.
		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)
		_, err = f.svc.AdvanceQuestion(ctx, f.playerID)
		require.NoError(t, err)
		_, err = f.svc.SubmitAnswer(ctx, f.playerID, 1)
		require.NoError(t, err)
		_, err = f.svc.AdvanceQuestion(ctx, f.playerID)
		require.NoError(t, err)
		_, err = f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)

		session, err := f.svc.EndGame(ctx, f.playerID)
		require.NoError(t, err)

		assert.Equal(t, model.PhaseGameOver, session.Phase)
		require.NotNil(t, session.Result)
		assert.Equal(t, 80, session.Result.FinalScore)
		assert.Equal(t, 40, session.Result.BaseXP)
		assert.Equal(t, 0, session.Result.BonusXP)
		assert.Equal(t, 40, session.Result.TotalXP)
		assert.False(t, session.Result.LeveledUp)
		assert.Equal(t, 1, session.Result.Level)
		assert.Equal(t, "Solid decisions under pressure.", session.Result.Summary)

		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.Equal(t, 40, ledger.XP)
		assert.True(t, ledger.HasAchievement("first_game"))
		assert.True(t, ledger.HasAchievement("fire_fighter"), "score above 70 unlocks the category achievement")
		assert.False(t, ledger.HasAchievement("perfect_score"))
		assert.Equal(t, model.CategoryStats{Total: 1, Perfect: 0}, ledger.Stats["urbanFire"])

		require.Len(t, f.records.records, 1)
		record := f.records.records[0]
		assert.Equal(t, "urbanFire", record.CategoryKey)
		assert.Equal(t, 80, record.FinalScore)
		assert.Equal(t, 3, record.Questions)
		assert.Len(t, record.Transcript, 3)
	})

	t.Run("perfect run unlocks perfect_score and counts as perfect", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "floodResponse", 0)

		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)
		session, err := f.svc.EndGame(ctx, f.playerID)
		require.NoError(t, err)

		assert.Equal(t, 100, session.Result.FinalScore)

		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.True(t, ledger.HasAchievement("perfect_score"))
		assert.True(t, ledger.HasAchievement("flood_expert"))
		assert.Equal(t, model.CategoryStats{Total: 1, Perfect: 1}, ledger.Stats["floodResponse"])
	})

	t.Run("low score skips category rewards", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0), scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		// Two wrong answers: 100 -> 80 -> 60.
		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 1)
		require.NoError(t, err)
		_, err = f.svc.AdvanceQuestion(ctx, f.playerID)
		require.NoError(t, err)
		_, err = f.svc.SubmitAnswer(ctx, f.playerID, 1)
		require.NoError(t, err)

		_, err = f.svc.EndGame(ctx, f.playerID)
		require.NoError(t, err)

		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.True(t, ledger.HasAchievement("first_game"))
		assert.False(t, ledger.HasAchievement("fire_fighter"))
		assert.NotContains(t, ledger.Stats, "urbanFire")
	})

	t.Run("summary failure falls back to the canned message", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.content.summaryErr = errFetchFailed
		f.start(t, "urbanFire", 0)

		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)
		session, err := f.svc.EndGame(ctx, f.playerID)
		require.NoError(t, err)

		assert.Equal(t, noSummaryMessage, session.Result.Summary)
		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.Equal(t, 20, ledger.XP, "rewards survive a missing summary")
	})

	t.Run("speed bonus feeds the total", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 30)

		f.clock.Advance(2 * time.Second)
		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)
		session, err := f.svc.EndGame(ctx, f.playerID)
		require.NoError(t, err)

		assert.Equal(t, 20, session.Result.BaseXP)
		assert.Equal(t, 15, session.Result.BonusXP)
		assert.Equal(t, 35, session.Result.TotalXP)
	})

	t.Run("cannot end outside the game phase", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)
		_, err = f.svc.EndGame(ctx, f.playerID)
		require.NoError(t, err)

		_, err = f.svc.EndGame(ctx, f.playerID)
		assert.ErrorIs(t, err, ErrWrongPhase)
	})
}

func TestRestartAndAbandon(t *testing.T) {
	ctx := context.Background()

	t.Run("restart resets the session, not the ledger", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0), scenarioQuestion(1)}
		f.start(t, "urbanFire", 15)

		_, err := f.svc.SubmitAnswer(ctx, f.playerID, 0)
		require.NoError(t, err)
		_, err = f.svc.EndGame(ctx, f.playerID)
		require.NoError(t, err)

		session, err := f.svc.Restart(ctx, f.playerID)
		require.NoError(t, err)

		assert.Equal(t, model.PhaseGame, session.Phase)
		assert.Equal(t, "urbanFire", session.CategoryKey)
		assert.Equal(t, 15, session.TimerSec)
		assert.Equal(t, 100, session.Score)
		assert.Empty(t, session.Answered)
		assert.Nil(t, session.Result)

		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.True(t, ledger.HasAchievement("first_game"), "progression survives a restart")
		assert.NotZero(t, ledger.XP)
	})

	t.Run("abandon destroys the session", func(t *testing.T) {
		f := newSessionFixture(t)
		f.content.questions = []*model.Question{scenarioQuestion(0)}
		f.start(t, "urbanFire", 0)

		require.NoError(t, f.svc.Abandon(ctx, f.playerID))
		_, err := f.svc.Get(ctx, f.playerID)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("restart without a session fails", func(t *testing.T) {
		f := newSessionFixture(t)
		_, err := f.svc.Restart(ctx, f.playerID)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}
