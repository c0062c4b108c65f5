package types

import "time"

// Conversation is a locally cached dialogue thread.
type Conversation struct {
	ConversationID string    `json:"conversation_id"`
	Name           string    `json:"name"`
	FirstMessage   string    `json:"first_message"`
	MessageCount   int       `json:"message_count"`
	LastUsedTime   time.Time `json:"last_used_time"`
	CreatedAt      time.Time `json:"created_at"`
}

// Message is one entry in a conversation's append-only log.
// IDs are monotonic across the whole store, not per conversation.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}
