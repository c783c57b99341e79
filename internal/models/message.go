package models

import "time"

// Message represents one unit of conversation content.
type Message struct {
	ID             string     `db:"id" json:"id"`
	ConversationID string     `db:"conversation_id" json:"conversation_id"`
	SenderID       string     `db:"sender_id" json:"sender_id"`
	Body           string     `db:"body" json:"body"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	EditedAt       *time.Time `db:"edited_at" json:"edited_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at"`
}

// MessageRef identifies a message within its conversation; used by the batched
// unread computation.
type MessageRef struct {
	ID             string `db:"id"`
	ConversationID string `db:"conversation_id"`
}

// LastMessage carries the most recent visible body per conversation.
type LastMessage struct {
	ConversationID string `db:"conversation_id"`
	Body           string `db:"body"`
}

// DeletedMessagePlaceholder is rendered in place of a soft-deleted body.
const DeletedMessagePlaceholder = "Message deleted"
