package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgAchievementUnlocked MessageType = "achievement_unlocked"
	MsgLevelUp             MessageType = "level_up"
	MsgBroadcast           MessageType = "broadcast"
	MsgError               MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages the per-player WebSocket connections. A player has at most
// one live connection; a newer connection replaces the older one.
type Hub struct {
	playerConns map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	push       chan *PushMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

// PushMessage is a message addressed to one player
type PushMessage struct {
	PlayerID string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		playerConns: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		push:        make(chan *PushMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if existing, ok := h.playerConns[conn.PlayerID]; ok {
				close(existing.Send)
			}
			h.playerConns[conn.PlayerID] = conn
			h.mu.Unlock()
			log.Printf("Player %s connected via WebSocket", conn.PlayerID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.playerConns[conn.PlayerID]; ok && existing == conn {
				delete(h.playerConns, conn.PlayerID)
				close(conn.Send)
				log.Printf("Player %s disconnected", conn.PlayerID)
			}
			h.mu.Unlock()

		case msg := <-h.push:
			h.mu.RLock()
			if conn, ok := h.playerConns[msg.PlayerID]; ok {
				data, _ := json.Marshal(msg.Message)
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// NotifyPlayer sends an event to a player's connection if one is live
// (implements service.Notifier). Events are best-effort: an offline player
// misses the push, but the REST responses carry the same state.
func (h *Hub) NotifyPlayer(playerID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.push <- &PushMessage{
		PlayerID: playerID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectPlayer drops a player's connection (implements service.Notifier)
func (h *Hub) DisconnectPlayer(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.playerConns[playerID]; ok {
		delete(h.playerConns, playerID)
		close(conn.Send)
	}
}
