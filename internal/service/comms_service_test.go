package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepzone/internal/model"
)

type commsFixture struct {
	svc      *CommsService
	ledger   *LedgerService
	content  *fakeContent
	notifier *fakeNotifier
	playerID string
}

func newCommsFixture(t *testing.T) *commsFixture {
	t.Helper()

	notifier := &fakeNotifier{}
	ledgerSvc := NewLedgerService(newFakeLedgerRepo(), newFakeLeaderboard())
	ledgerSvc.SetNotifier(notifier)

	content := &fakeContent{
		reply: "We are safe, stay where you are.",
		broadcast: &model.Broadcast{
			Title:     "Flood warning for Lagos Island",
			Message:   "Heavy rainfall expected. Avoid low-lying roads.",
			Severity:  model.SeverityWarning,
			Timestamp: time.Now(),
		},
		recs: &model.Recommendations{
			ContextualAlert:              "Rainy season has started in your area.",
			TrainingRecommendationKey:    "floodResponse",
			TrainingRecommendationReason: "You have not trained flood response yet.",
			PreparednessTip:              "Keep important documents in a waterproof bag.",
		},
	}

	svc := NewCommsService(content, newFakeChatCache(), ledgerSvc)
	svc.SetNotifier(notifier)

	player := registerPlayer(t, ledgerSvc, "Ada")

	return &commsFixture{
		svc:      svc,
		ledger:   ledgerSvc,
		content:  content,
		notifier: notifier,
		playerID: player.PlayerID,
	}
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the broadcast and unlocks comms_check", func(t *testing.T) {
		f := newCommsFixture(t)

		broadcast, err := f.svc.Broadcast(ctx, f.playerID)
		require.NoError(t, err)
		assert.Equal(t, "Flood warning for Lagos Island", broadcast.Title)

		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.True(t, ledger.HasAchievement("comms_check"))

		assert.Len(t, f.notifier.ofType("broadcast"), 1)
	})

	t.Run("generation failure surfaces and unlocks nothing", func(t *testing.T) {
		f := newCommsFixture(t)
		f.content.fetchErr = errFetchFailed

		_, err := f.svc.Broadcast(ctx, f.playerID)
		assert.ErrorIs(t, err, errFetchFailed)

		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.False(t, ledger.HasAchievement("comms_check"))
	})
}

func TestChatHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("first access seeds the opening message", func(t *testing.T) {
		f := newCommsFixture(t)

		history, err := f.svc.History(ctx, f.playerID, "neighbor")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, model.SenderContact, history[0].Sender)
		assert.Equal(t, "Hey, just checking in. Are you okay over there?", history[0].Text)

		// Second access returns the same single message
		again, err := f.svc.History(ctx, f.playerID, "neighbor")
		require.NoError(t, err)
		assert.Len(t, again, 1)
	})

	t.Run("community opening reads as a system notice", func(t *testing.T) {
		f := newCommsFixture(t)

		history, err := f.svc.History(ctx, f.playerID, "community")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, model.SenderSystem, history[0].Sender)
	})

	t.Run("unknown contact is rejected", func(t *testing.T) {
		f := newCommsFixture(t)
		_, err := f.svc.History(ctx, f.playerID, "stranger")
		assert.ErrorIs(t, err, ErrUnknownContact)
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("appends the exchange and unlocks chat_starter", func(t *testing.T) {
		f := newCommsFixture(t)

		history, err := f.svc.SendMessage(ctx, f.playerID, "family", "I'm at the office, all good.")
		require.NoError(t, err)

		// opening + user message + reply
		require.Len(t, history, 3)
		assert.Equal(t, model.SenderUser, history[1].Sender)
		assert.Equal(t, "I'm at the office, all good.", history[1].Text)
		assert.Equal(t, model.SenderContact, history[2].Sender)
		assert.Equal(t, "We are safe, stay where you are.", history[2].Text)

		ledger, err := f.ledger.Get(ctx, f.playerID)
		require.NoError(t, err)
		assert.True(t, ledger.HasAchievement("chat_starter"))
	})

	t.Run("reply prompt sees the user's message", func(t *testing.T) {
		f := newCommsFixture(t)

		_, err := f.svc.SendMessage(ctx, f.playerID, "neighbor", "Power is out on our street.")
		require.NoError(t, err)

		require.NotEmpty(t, f.content.chatHistory)
		last := f.content.chatHistory[len(f.content.chatHistory)-1]
		assert.Equal(t, model.SenderUser, last.Sender)
		assert.Equal(t, "Power is out on our street.", last.Text)
	})

	t.Run("rejects blank messages", func(t *testing.T) {
		f := newCommsFixture(t)
		_, err := f.svc.SendMessage(ctx, f.playerID, "family", "   ")
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("reply failure keeps the user's message", func(t *testing.T) {
		f := newCommsFixture(t)
		f.content.fetchErr = errFetchFailed

		_, err := f.svc.SendMessage(ctx, f.playerID, "family", "Anyone there?")
		assert.ErrorIs(t, err, errFetchFailed)

		f.content.fetchErr = nil
		history, err := f.svc.History(ctx, f.playerID, "family")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "Anyone there?", history[1].Text)
	})
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	f := newCommsFixture(t)

	_, err := f.svc.SendMessage(ctx, f.playerID, "family", "Hello")
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearHistory(ctx, f.playerID, "family"))

	history, err := f.svc.History(ctx, f.playerID, "family")
	require.NoError(t, err)
	assert.Len(t, history, 1, "cleared thread reseeds the opening")
}

func TestRecommendations(t *testing.T) {
	ctx := context.Background()
	f := newCommsFixture(t)

	recs, err := f.svc.Recommendations(ctx, f.playerID)
	require.NoError(t, err)
	assert.Equal(t, "floodResponse", recs.TrainingRecommendationKey)
	assert.NotEmpty(t, recs.PreparednessTip)
}
