package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"prepzone/internal/cache"
	"prepzone/internal/model"
)

var (
	ErrUnknownContact = errors.New("unknown chat contact")
	ErrEmptyMessage   = errors.New("message text is empty")
)

// CommsFetcher is the slice of AI generation the communications hub depends
// on.
type CommsFetcher interface {
	FetchBroadcast(ctx context.Context, language, location string) (*model.Broadcast, error)
	FetchChatReply(ctx context.Context, contact *model.ChatContact, language string, history []model.ChatMessage) (string, error)
	FetchRecommendations(ctx context.Context, language, location string, level int, stats map[string]model.CategoryStats) (*model.Recommendations, error)
}

// CommsService runs the communications hub: emergency broadcasts, simulated
// contact chats, and the personalized dashboard.
type CommsService struct {
	content   CommsFetcher
	chats     cache.ChatCache
	ledgerSvc *LedgerService
	notifier  Notifier
}

// NewCommsService creates a new comms service.
func NewCommsService(content CommsFetcher, chats cache.ChatCache, ledgerSvc *LedgerService) *CommsService {
	return &CommsService{
		content:   content,
		chats:     chats,
		ledgerSvc: ledgerSvc,
	}
}

// SetNotifier wires the WebSocket hub in after construction.
func (s *CommsService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Broadcast generates a fresh emergency broadcast for the player's location
// and pushes it over their WebSocket. Tuning in unlocks comms_check.
func (s *CommsService) Broadcast(ctx context.Context, playerID string) (*model.Broadcast, error) {
	ledger, err := s.ledgerSvc.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	broadcast, err := s.content.FetchBroadcast(ctx, model.LanguageName(ledger.Language), ledger.Location)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledgerSvc.UnlockAchievement(ctx, playerID, "comms_check"); err != nil {
		log.Printf("comms_check unlock failed for %s: %v", playerID, err)
	}
	if s.notifier != nil {
		s.notifier.NotifyPlayer(playerID, "broadcast", broadcast)
	}
	return broadcast, nil
}

// Contacts returns the static contact catalog.
func (s *CommsService) Contacts() []model.ChatContact {
	return model.ChatContacts
}

// History returns the chat history with a contact, seeding the contact's
// opening message on first access.
func (s *CommsService) History(ctx context.Context, playerID, contactID string) ([]model.ChatMessage, error) {
	contact := model.ChatContactByID(contactID)
	if contact == nil {
		return nil, ErrUnknownContact
	}

	history, err := s.chats.History(ctx, playerID, contactID)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		return history, nil
	}

	opening := model.ChatMessage{
		Text:      contact.Opening,
		Sender:    openingSender(contactID),
		Timestamp: time.Now(),
	}
	if err := s.chats.Append(ctx, playerID, contactID, &opening); err != nil {
		return nil, err
	}
	return []model.ChatMessage{opening}, nil
}

// openingSender picks who the seeded first message comes from. Community
// announcements read as system notices, personal contacts as themselves.
func openingSender(contactID string) model.ChatSender {
	if contactID == "community" {
		return model.SenderSystem
	}
	return model.SenderContact
}

// SendMessage appends the player's message and generates the contact's
// in-character reply. The first message ever sent unlocks chat_starter. If
// reply generation fails the player's message stays in the history and the
// error surfaces; resending just the next message retries.
func (s *CommsService) SendMessage(ctx context.Context, playerID, contactID, text string) ([]model.ChatMessage, error) {
	contact := model.ChatContactByID(contactID)
	if contact == nil {
		return nil, ErrUnknownContact
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	history, err := s.History(ctx, playerID, contactID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledgerSvc.UnlockAchievement(ctx, playerID, "chat_starter"); err != nil {
		log.Printf("chat_starter unlock failed for %s: %v", playerID, err)
	}

	userMsg := model.ChatMessage{Text: text, Sender: model.SenderUser, Timestamp: time.Now()}
	if err := s.chats.Append(ctx, playerID, contactID, &userMsg); err != nil {
		return nil, err
	}
	history = append(history, userMsg)

	ledger, err := s.ledgerSvc.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	replyText, err := s.content.FetchChatReply(ctx, contact, model.LanguageName(ledger.Language), history)
	if err != nil {
		return nil, err
	}

	reply := model.ChatMessage{Text: replyText, Sender: model.SenderContact, Timestamp: time.Now()}
	if err := s.chats.Append(ctx, playerID, contactID, &reply); err != nil {
		return nil, err
	}
	return append(history, reply), nil
}

// ClearHistory wipes a chat thread; the next access reseeds the opening.
func (s *CommsService) ClearHistory(ctx context.Context, playerID, contactID string) error {
	if model.ChatContactByID(contactID) == nil {
		return ErrUnknownContact
	}
	return s.chats.Clear(ctx, playerID, contactID)
}

// Recommendations generates the personalized dashboard payload from the
// player's location and training history.
func (s *CommsService) Recommendations(ctx context.Context, playerID string) (*model.Recommendations, error) {
	ledger, err := s.ledgerSvc.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return s.content.FetchRecommendations(ctx, model.LanguageName(ledger.Language), ledger.Location, ledger.Level, ledger.Stats)
}
