// Package chat owns conversation metadata and per-conversation transcripts.
package chat

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/docdash/docdash/pkg/models"
)

// Storage keys owned by this package. Each conversation's transcript lives
// under its own key derived from the conversation ID.
const (
	conversationsKey = "conversations"
	historyKeyPrefix = "chat_history:"
)

// Storage is the slice of the durable store the chat package needs.
type Storage interface {
	Read(key string) (string, bool)
	Write(key, value string)
	Remove(key string)
}

const defaultTitle = "New Chat"

// timestampLayout is the display format for conversation creation times.
const timestampLayout = "2006-01-02 15:04"

// Registry owns the ordered conversation list and the active selection.
// Conversations are never deleted; user-created ones are prepended so the
// newest appears first.
type Registry struct {
	storage       Storage
	model         string
	conversations []models.Conversation
	activeID      string
}

// NewRegistry creates a registry whose new conversations carry the given
// model tag.
func NewRegistry(storage Storage, model string) *Registry {
	return &Registry{storage: storage, model: model}
}

// LoadOrInit reads the persisted conversation list, synthesizing a single
// default conversation when none exists. The first entry becomes active.
// Malformed persisted content is logged and treated as absent.
func (r *Registry) LoadOrInit() {
	if raw, ok := r.storage.Read(conversationsKey); ok {
		var conversations []models.Conversation
		if err := json.Unmarshal([]byte(raw), &conversations); err != nil {
			log.Printf("chat: discarding malformed conversation list: %v", err)
		} else if len(conversations) > 0 {
			r.conversations = conversations
			r.activeID = conversations[0].ID
			return
		}
	}

	conv := r.newConversation()
	r.conversations = []models.Conversation{conv}
	r.activeID = conv.ID
	r.save()
}

// Create prepends a new conversation and selects it.
func (r *Registry) Create() models.Conversation {
	conv := r.newConversation()
	r.conversations = append([]models.Conversation{conv}, r.conversations...)
	r.activeID = conv.ID
	r.save()
	return conv
}

// Select makes the conversation with the given ID active. Unknown IDs are
// ignored; selection never touches the list itself.
func (r *Registry) Select(id string) {
	for _, conv := range r.conversations {
		if conv.ID == id {
			r.activeID = id
			return
		}
	}
}

// Active returns the active conversation.
func (r *Registry) Active() (models.Conversation, bool) {
	for _, conv := range r.conversations {
		if conv.ID == r.activeID {
			return conv, true
		}
	}
	return models.Conversation{}, false
}

// List returns the conversations in display order.
func (r *Registry) List() []models.Conversation {
	out := make([]models.Conversation, len(r.conversations))
	copy(out, r.conversations)
	return out
}

func (r *Registry) newConversation() models.Conversation {
	return models.Conversation{
		ID:        uuid.New().String(),
		Title:     defaultTitle,
		Model:     r.model,
		Timestamp: time.Now().Format(timestampLayout),
	}
}

// save persists the list. An empty list is never written over earlier
// history.
func (r *Registry) save() {
	if len(r.conversations) == 0 {
		return
	}
	data, err := json.Marshal(r.conversations)
	if err != nil {
		log.Printf("chat: cannot marshal conversation list: %v", err)
		return
	}
	r.storage.Write(conversationsKey, string(data))
}
