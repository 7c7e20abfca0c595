package model

import "time"

// BroadcastSeverity classifies an emergency broadcast.
type BroadcastSeverity string

const (
	SeverityAlert   BroadcastSeverity = "Alert"
	SeverityWarning BroadcastSeverity = "Warning"
	SeverityInfo    BroadcastSeverity = "Info"
)

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s BroadcastSeverity) bool {
	switch s {
	case SeverityAlert, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// BroadcastSource is a grounding citation attached to a broadcast.
type BroadcastSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Broadcast is a simulated emergency announcement.
type Broadcast struct {
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Severity  BroadcastSeverity `json:"severity"`
	Sources   []BroadcastSource `json:"sources,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// ChatSender identifies who produced a chat message.
type ChatSender string

const (
	SenderUser    ChatSender = "user"
	SenderContact ChatSender = "contact"
	SenderSystem  ChatSender = "system"
)

// ChatMessage is one message in a simulated contact chat.
type ChatMessage struct {
	Text      string     `json:"text"`
	Sender    ChatSender `json:"sender"`
	Timestamp time.Time  `json:"timestamp"`
}

// ChatContact is a simulated emergency contact.
type ChatContact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	Opening string `json:"opening"` // seeded first message
}

// ChatContacts is the static contact catalog.
var ChatContacts = []ChatContact{
	{ID: "family", Name: "Family Group Chat", Avatar: "😊", Opening: "Everyone check in, please."},
	{ID: "community", Name: "Community Watch", Avatar: "🏠", Opening: "Official Announcement: Please stay indoors until further notice. We will share updates as they come."},
	{ID: "neighbor", Name: "Neighbor", Avatar: "👤", Opening: "Hey, just checking in. Are you okay over there?"},
}

// ChatContactByID returns the contact for id, or nil.
func ChatContactByID(id string) *ChatContact {
	for i := range ChatContacts {
		if ChatContacts[i].ID == id {
			return &ChatContacts[i]
		}
	}
	return nil
}

// Recommendations is the personalized dashboard payload.
type Recommendations struct {
	ContextualAlert              string `json:"contextualAlert"`
	TrainingRecommendationKey    string `json:"trainingRecommendationKey"`
	TrainingRecommendationReason string `json:"trainingRecommendationReason"`
	PreparednessTip              string `json:"preparednessTip"`
}
