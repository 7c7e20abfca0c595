package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"prepzone/internal/cache"
	"prepzone/internal/model"
)

// In-memory stand-ins for the Mongo and Redis layers.

type fakeLedgerRepo struct {
	mu      sync.Mutex
	ledgers map[string]string // playerID -> JSON
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{ledgers: map[string]string{}}
}

func (r *fakeLedgerRepo) store(ledger *model.Ledger) {
	data, _ := json.Marshal(ledger)
	r.ledgers[ledger.PlayerID] = string(data)
}

func (r *fakeLedgerRepo) Create(ctx context.Context, ledger *model.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledger.CreatedAt = time.Now()
	ledger.UpdatedAt = ledger.CreatedAt
	r.store(ledger)
	return nil
}

func (r *fakeLedgerRepo) GetByPlayerID(ctx context.Context, playerID string) (*model.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.ledgers[playerID]
	if !ok {
		return nil, nil
	}
	var ledger model.Ledger
	if err := json.Unmarshal([]byte(data), &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *fakeLedgerRepo) Update(ctx context.Context, ledger *model.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledger.UpdatedAt = time.Now()
	r.store(ledger)
	return nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records []*model.GameRecord
}

func (r *fakeRecordRepo) Create(ctx context.Context, record *model.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.EndedAt.IsZero() {
		record.EndedAt = time.Now()
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeRecordRepo) GetByPlayerID(ctx context.Context, playerID string, limit int) ([]*model.GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.GameRecord
	for _, rec := range r.records {
		if rec.PlayerID == playerID {
			out = append(out, rec)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSessionCache struct {
	mu       sync.Mutex
	sessions map[string]string // playerID -> JSON
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{sessions: map[string]string{}}
}

func (c *fakeSessionCache) Set(ctx context.Context, playerID string, session *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	c.sessions[playerID] = string(data)
	return nil
}

func (c *fakeSessionCache) Get(ctx context.Context, playerID string) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.sessions[playerID]
	if !ok {
		return nil, nil
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *fakeSessionCache) Delete(ctx context.Context, playerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, playerID)
	return nil
}

type fakeChatCache struct {
	mu    sync.Mutex
	chats map[string][]model.ChatMessage
}

func newFakeChatCache() *fakeChatCache {
	return &fakeChatCache{chats: map[string][]model.ChatMessage{}}
}

func chatKey(playerID, contactID string) string { return playerID + "|" + contactID }

func (c *fakeChatCache) Append(ctx context.Context, playerID, contactID string, msg *model.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := chatKey(playerID, contactID)
	c.chats[key] = append(c.chats[key], *msg)
	return nil
}

func (c *fakeChatCache) History(ctx context.Context, playerID, contactID string) ([]model.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ChatMessage{}, c.chats[chatKey(playerID, contactID)]...), nil
}

func (c *fakeChatCache) Clear(ctx context.Context, playerID, contactID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.chats, chatKey(playerID, contactID))
	return nil
}

type fakeLeaderboard struct {
	mu     sync.Mutex
	totals map[string]int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{totals: map[string]int{}}
}

func (l *fakeLeaderboard) AddXP(ctx context.Context, playerID string, xp int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totals[playerID] += xp
	return nil
}

func (l *fakeLeaderboard) GetTop(ctx context.Context, limit int) ([]cache.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]cache.LeaderboardEntry, 0, len(l.totals))
	for id, xp := range l.totals {
		entries = append(entries, cache.LeaderboardEntry{PlayerID: id, XP: xp})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].XP > entries[j].XP })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (l *fakeLeaderboard) GetRank(ctx context.Context, playerID string) (int64, error) {
	entries, _ := l.GetTop(ctx, len(l.totals))
	for _, e := range entries {
		if e.PlayerID == playerID {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

type notification struct {
	PlayerID string
	Type     string
	Payload  interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *fakeNotifier) NotifyPlayer(playerID string, eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{PlayerID: playerID, Type: eventType, Payload: payload})
}

func (n *fakeNotifier) DisconnectPlayer(playerID string) {}

func (n *fakeNotifier) ofType(eventType string) []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fakeContent scripts the generation layer. Questions are served from a
// queue; an empty queue yields errFetchFailed.
type fakeContent struct {
	mu         sync.Mutex
	questions  []*model.Question
	summary    string
	summaryErr error
	broadcast  *model.Broadcast
	reply      string
	recs       *model.Recommendations
	fetchErr   error

	lastContext string
	chatHistory []model.ChatMessage
}

var errFetchFailed = errors.New("generation failed")

func (f *fakeContent) nextQuestion() (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.questions) == 0 {
		return nil, errFetchFailed
	}
	q := f.questions[0]
	f.questions = f.questions[1:]
	return q, nil
}

func (f *fakeContent) FetchInitialQuestion(ctx context.Context, categoryTitle, language, location string) (*model.Question, error) {
	return f.nextQuestion()
}

func (f *fakeContent) FetchNextQuestion(ctx context.Context, categoryTitle, language, location, previousContext string) (*model.Question, error) {
	f.mu.Lock()
	f.lastContext = previousContext
	f.mu.Unlock()
	return f.nextQuestion()
}

func (f *fakeContent) FetchSessionSummary(ctx context.Context, categoryTitle, language string, transcript []model.AnsweredQuestion) (string, error) {
	if f.summaryErr != nil {
		return "", f.summaryErr
	}
	return f.summary, nil
}

func (f *fakeContent) FetchBroadcast(ctx context.Context, language, location string) (*model.Broadcast, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.broadcast, nil
}

func (f *fakeContent) FetchChatReply(ctx context.Context, contact *model.ChatContact, language string, history []model.ChatMessage) (string, error) {
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	f.mu.Lock()
	f.chatHistory = append([]model.ChatMessage{}, history...)
	f.mu.Unlock()
	return f.reply, nil
}

func (f *fakeContent) FetchRecommendations(ctx context.Context, language, location string, level int, stats map[string]model.CategoryStats) (*model.Recommendations, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.recs, nil
}
