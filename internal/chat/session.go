package chat

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/docdash/docdash/internal/answer"
	"github.com/docdash/docdash/internal/api"
	"github.com/docdash/docdash/pkg/models"
)

// interruptedNotice replaces the content of a loading placeholder that was
// abandoned by a cancelled or crashed exchange.
const interruptedNotice = "Interrupted before a response arrived."

// genericFailure is shown when a failed exchange carries no message of its own.
const genericFailure = "The request failed. Please try again."

// QueryClient answers questions against the indexed documents.
type QueryClient interface {
	Query(ctx context.Context, question string) (*api.QueryResponse, error)
}

// Session is the message state machine for a single conversation. It owns the
// conversation's transcript exclusively: messages are appended as a paired
// complete user entry plus loading assistant placeholder, and the placeholder
// is mutated exactly once, to complete or error.
//
// A session allows one outstanding send at a time; further attempts while a
// send is in flight are dropped, not queued. Sessions are confined to the
// event loop that created them.
type Session struct {
	storage        Storage
	client         QueryClient
	conversationID string

	messages []models.ChatMessage
	ready    bool
	inFlight bool

	// Per-message reference visibility, transient by design.
	showRefs map[string]bool
}

// NewSession creates the session for a conversation and loads its persisted
// transcript.
func NewSession(storage Storage, client QueryClient, conversationID string) *Session {
	s := &Session{
		storage:        storage,
		client:         client,
		conversationID: conversationID,
		ready:          true,
		showRefs:       make(map[string]bool),
	}
	s.load()
	return s
}

// ConversationID returns the conversation this session belongs to.
func (s *Session) ConversationID() string {
	return s.conversationID
}

// Messages returns the transcript in order.
func (s *Session) Messages() []models.ChatMessage {
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// InFlight reports whether a send is currently outstanding.
func (s *Session) InFlight() bool {
	return s.inFlight
}

// SetReady gates sending; the dashboard clears readiness while documents are
// being indexed.
func (s *Session) SetReady(ready bool) {
	s.ready = ready
}

// Begin validates a question and, if accepted, atomically appends the user
// message and its loading assistant placeholder before any network activity.
// It returns the placeholder's ID. Blank questions, an unready session, or an
// in-flight send reject the attempt.
func (s *Session) Begin(question string) (string, bool) {
	question = strings.TrimSpace(question)
	if question == "" || !s.ready || s.inFlight {
		return "", false
	}

	user, assistant := models.NewMessagePair(question)
	s.messages = append(s.messages, user, assistant)
	s.inFlight = true
	return assistant.ID, true
}

// Resolve completes the pending assistant placeholder from a query response
// and flushes the transcript. The in-flight flag clears whatever happens.
func (s *Session) Resolve(messageID string, resp *api.QueryResponse) {
	defer func() { s.inFlight = false }()

	msg := s.find(messageID)
	if msg == nil || msg.Status != models.StatusLoading {
		return
	}

	content, refs := answer.Parse(resp.ExtractAnswer())
	msg.Content = content
	msg.References = refs
	msg.Status = models.StatusComplete
	s.Flush()
}

// Fail marks the pending assistant placeholder as errored with a
// human-readable description and flushes the transcript.
func (s *Session) Fail(messageID string, err error) {
	defer func() { s.inFlight = false }()

	msg := s.find(messageID)
	if msg == nil || msg.Status != models.StatusLoading {
		return
	}

	content := genericFailure
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		content = err.Error()
	}
	msg.Content = content
	msg.Status = models.StatusError
	s.Flush()
}

// Send runs a full exchange synchronously: Begin, query, then Resolve or
// Fail. It reports whether the question was accepted; rejected sends leave
// the transcript untouched and hit no network.
func (s *Session) Send(ctx context.Context, question string) bool {
	messageID, ok := s.Begin(question)
	if !ok {
		return false
	}

	resp, err := s.client.Query(ctx, strings.TrimSpace(question))
	if err != nil {
		s.Fail(messageID, err)
		return true
	}
	s.Resolve(messageID, resp)
	return true
}

// ToggleReferences flips reference visibility for a message. Visibility is
// session-local state and is never persisted.
func (s *Session) ToggleReferences(messageID string) {
	s.showRefs[messageID] = !s.showRefs[messageID]
}

// ReferencesVisible reports whether a message's references are expanded.
// The default is collapsed.
func (s *Session) ReferencesVisible(messageID string) bool {
	return s.showRefs[messageID]
}

// Flush writes the transcript to durable storage under this conversation's
// key. Call it on teardown or conversation switch; Resolve and Fail flush on
// their own.
func (s *Session) Flush() {
	data, err := json.Marshal(s.messages)
	if err != nil {
		log.Printf("chat: cannot marshal transcript for %s: %v", s.conversationID, err)
		return
	}
	s.storage.Write(historyKeyPrefix+s.conversationID, string(data))
}

// load reads the persisted transcript. Malformed content is logged and
// treated as absent. A loading placeholder left behind by an interrupted
// exchange is settled as an error so it cannot hang forever.
func (s *Session) load() {
	raw, ok := s.storage.Read(historyKeyPrefix + s.conversationID)
	if !ok {
		return
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		log.Printf("chat: discarding malformed transcript for %s: %v", s.conversationID, err)
		return
	}

	for i := range messages {
		if messages[i].Status == models.StatusLoading {
			messages[i].Status = models.StatusError
			messages[i].Content = interruptedNotice
		}
	}
	s.messages = messages
}

func (s *Session) find(messageID string) *models.ChatMessage {
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			return &s.messages[i]
		}
	}
	return nil
}
