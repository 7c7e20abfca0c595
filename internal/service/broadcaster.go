package service

// Notifier interface for WebSocket push events (avoids import cycle)
type Notifier interface {
	NotifyPlayer(playerID string, eventType string, payload interface{})
	DisconnectPlayer(playerID string)
}
