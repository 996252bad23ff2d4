// Package models contains the shared data structures for conversations,
// messages, and indexed documents.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the sender of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// MessageStatus tracks the lifecycle of a chat message. Assistant messages
// transition loading -> complete or loading -> error exactly once; user
// messages are created complete. StatusIdle is the zero placeholder and is
// never constructed in the visible flow.
type MessageStatus string

const (
	StatusIdle     MessageStatus = "idle"
	StatusLoading  MessageStatus = "loading"
	StatusComplete MessageStatus = "complete"
	StatusError    MessageStatus = "error"
)

// Document is a file that has been indexed by the remote service. Name is the
// original filename and acts as the natural merge key: re-indexing a file
// with the same name replaces the earlier entry.
type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	IndexedAt string `json:"indexed_at"` // RFC 3339; lexicographic order is chronological
}

// Conversation is the metadata for one chat thread.
type Conversation struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Model     string `json:"model"`
	Timestamp string `json:"timestamp"` // display string, e.g. "2006-01-02 15:04"
}

// ChatMessage is a single entry in a conversation transcript.
type ChatMessage struct {
	ID         string        `json:"id"`
	Role       Role          `json:"role"`
	Content    string        `json:"content"`
	Status     MessageStatus `json:"status"`
	CreatedAt  string        `json:"created_at"`
	References []string      `json:"references,omitempty"`
}

// NewMessagePair creates a completed user message and its loading assistant
// placeholder. Both share one creation timestamp so they render as a single
// exchange.
func NewMessagePair(question string) (ChatMessage, ChatMessage) {
	now := time.Now().Format(time.RFC3339)
	user := ChatMessage{
		ID:        uuid.New().String(),
		Role:      RoleUser,
		Content:   question,
		Status:    StatusComplete,
		CreatedAt: now,
	}
	assistant := ChatMessage{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Status:    StatusLoading,
		CreatedAt: now,
	}
	return user, assistant
}
