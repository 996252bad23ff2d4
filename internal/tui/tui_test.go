package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docdash/docdash/internal/api"
	"github.com/docdash/docdash/internal/chat"
	"github.com/docdash/docdash/internal/config"
	"github.com/docdash/docdash/internal/dashboard"
	"github.com/docdash/docdash/internal/store"
	"github.com/docdash/docdash/pkg/models"
)

// newTestModel wires a model against a no-op store and an unreachable client.
// No test here performs network I/O; commands returned by Update are never
// executed.
func newTestModel(t *testing.T) model {
	t.Helper()

	cfg := config.Default()
	st := &store.Store{}
	client := api.NewClient("http://127.0.0.1:0")

	registry := chat.NewRegistry(st, cfg.Model)
	registry.LoadOrInit()
	active, ok := registry.Active()
	if !ok {
		t.Fatal("registry should have an active conversation")
	}

	dash := dashboard.New(st, client)
	session := chat.NewSession(st, client, active.ID)

	return initialModel(cfg, st, client, dash, registry, session)
}

// TestModelInitialization tests the initial model setup
func TestModelInitialization(t *testing.T) {
	m := newTestModel(t)

	if m.cancels == nil {
		t.Error("Cancel map should be initialized")
	}

	if m.input.Placeholder != askPlaceholder {
		t.Error("Input should start with the ask placeholder")
	}

	if m.ready {
		t.Error("Model should not be ready before the first window size")
	}

	if m.dash.State().ActiveTab != dashboard.TabConversations {
		t.Error("Conversations tab should be active initially")
	}
}

// TestWindowSizeInitialization tests viewport setup
func TestWindowSizeInitialization(t *testing.T) {
	m := newTestModel(t)

	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)

	if !m.ready {
		t.Error("Model should be ready after window size is set")
	}

	if m.width != 100 || m.height != 40 {
		t.Error("Window dimensions not set correctly")
	}

	if m.transcript.Width == 0 || m.transcript.Height == 0 {
		t.Error("Transcript viewport should have dimensions")
	}

	if m.listWidth()+m.transcriptWidth() > m.width+1 {
		t.Error("Panel widths exceed window width")
	}
}

// TestTabSwitching tests panel toggling and the input placeholder swap
func TestTabSwitching(t *testing.T) {
	m := newTestModel(t)

	updatedModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updatedModel.(model)

	if m.dash.State().ActiveTab != dashboard.TabDocuments {
		t.Error("Tab key should switch to the documents panel")
	}
	if m.input.Placeholder != indexPlaceholder {
		t.Error("Placeholder should switch to the index prompt")
	}

	updatedModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updatedModel.(model)

	if m.dash.State().ActiveTab != dashboard.TabConversations {
		t.Error("Tab key should switch back to the conversations panel")
	}
	if m.input.Placeholder != askPlaceholder {
		t.Error("Placeholder should switch back to the ask prompt")
	}
}

// TestSubmitQuestionStartsExchange tests that enter begins a send
func TestSubmitQuestionStartsExchange(t *testing.T) {
	m := newTestModel(t)
	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)

	m.input.SetValue("What is in the report?")
	updatedModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updatedModel.(model)

	if cmd == nil {
		t.Error("A command should be returned to run the query")
	}

	if !m.session.InFlight() {
		t.Error("Session should be in flight after submitting")
	}

	messages := m.session.Messages()
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[1].Status != models.StatusLoading {
		t.Error("Assistant placeholder should be loading")
	}

	if _, ok := m.cancels[m.session.ConversationID()]; !ok {
		t.Error("A cancel func should be registered for the conversation")
	}

	if m.input.Value() != "" {
		t.Error("Input should be cleared after submitting")
	}
}

// TestSubmitEmptyQuestionIsDropped tests that blank input does nothing
func TestSubmitEmptyQuestionIsDropped(t *testing.T) {
	m := newTestModel(t)
	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)

	m.input.SetValue("   ")
	updatedModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updatedModel.(model)

	if len(m.session.Messages()) != 0 {
		t.Error("Blank questions should not append messages")
	}
	if m.session.InFlight() {
		t.Error("Session should not be in flight")
	}
}

// TestQueryCompletionResolvesMessage tests the happy-path completion
func TestQueryCompletionResolvesMessage(t *testing.T) {
	m := newTestModel(t)
	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)

	messageID, ok := m.session.Begin("question")
	if !ok {
		t.Fatal("Begin should accept the question")
	}
	conversationID := m.session.ConversationID()
	_, cancel := context.WithCancel(context.Background())
	m.cancels[conversationID] = cancel

	updatedModel, _ = m.Update(QueryCompletedMsg{
		ConversationID: conversationID,
		MessageID:      messageID,
		Response:       &api.QueryResponse{Answer: "Found it [Doc A p.2]."},
	})
	m = updatedModel.(model)

	messages := m.session.Messages()
	last := messages[len(messages)-1]
	if last.Status != models.StatusComplete {
		t.Error("Assistant message should be complete")
	}
	if len(last.References) != 1 || last.References[0] != "Doc A p.2" {
		t.Errorf("References not extracted, got %v", last.References)
	}
	if _, ok := m.cancels[conversationID]; ok {
		t.Error("Cancel entry should be removed after completion")
	}
	if m.session.InFlight() {
		t.Error("Session should be idle after completion")
	}
}

// TestQueryCompletionFailure tests the error path
func TestQueryCompletionFailure(t *testing.T) {
	m := newTestModel(t)
	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)

	messageID, _ := m.session.Begin("question")

	updatedModel, _ = m.Update(QueryCompletedMsg{
		ConversationID: m.session.ConversationID(),
		MessageID:      messageID,
		Err:            errors.New("server returned HTTP 502"),
	})
	m = updatedModel.(model)

	messages := m.session.Messages()
	last := messages[len(messages)-1]
	if last.Status != models.StatusError {
		t.Error("Assistant message should be errored")
	}
	if m.status == "" {
		t.Error("A failure notice should be shown")
	}
}

// TestStaleQueryCompletionIsDropped tests that a completion for a
// switched-away conversation does not touch the active session
func TestStaleQueryCompletionIsDropped(t *testing.T) {
	m := newTestModel(t)
	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)

	messageID, _ := m.session.Begin("question")

	updatedModel, _ = m.Update(QueryCompletedMsg{
		ConversationID: "some-other-conversation",
		MessageID:      messageID,
		Response:       &api.QueryResponse{Answer: "stale"},
	})
	m = updatedModel.(model)

	messages := m.session.Messages()
	last := messages[len(messages)-1]
	if last.Status != models.StatusLoading {
		t.Error("Active session should be untouched by a stale completion")
	}
	if last.Content == "stale" {
		t.Error("Stale answer should not be applied")
	}
}

// TestNewConversation tests ctrl+n
func TestNewConversation(t *testing.T) {
	m := newTestModel(t)
	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)
	original := m.session.ConversationID()

	updatedModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = updatedModel.(model)

	if len(m.registry.List()) != 2 {
		t.Fatalf("Expected 2 conversations, got %d", len(m.registry.List()))
	}
	if m.session.ConversationID() == original {
		t.Error("Session should follow the new conversation")
	}
	active, _ := m.registry.Active()
	if m.session.ConversationID() != active.ID {
		t.Error("Session and registry selection should agree")
	}
	if m.convCursor != 0 {
		t.Error("Cursor should point at the new conversation")
	}
}

// TestSwitchingConversationCancelsInFlightQuery tests the cancel-on-switch
// behavior
func TestSwitchingConversationCancelsInFlightQuery(t *testing.T) {
	m := newTestModel(t)
	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)

	// Two conversations: the new one (cursor 0) and the original (cursor 1).
	updatedModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = updatedModel.(model)
	current := m.session.ConversationID()

	m.session.Begin("question")
	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[current] = cancel

	updatedModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updatedModel.(model)

	if m.session.ConversationID() == current {
		t.Error("Session should have switched conversations")
	}
	if ctx.Err() == nil {
		t.Error("In-flight query should be cancelled on switch")
	}
	if _, ok := m.cancels[current]; ok {
		t.Error("Cancel entry should be removed on switch")
	}
}

// TestIndexCompletionRestoresReadiness tests the indexing outcome handler
func TestIndexCompletionRestoresReadiness(t *testing.T) {
	m := newTestModel(t)
	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)

	m.session.SetReady(false)
	updatedModel, _ = m.Update(IndexCompletedMsg{})
	m = updatedModel.(model)

	if m.status == "" {
		t.Error("An indexing notice should be shown")
	}

	if _, ok := m.session.Begin("next question"); !ok {
		t.Error("Session should accept questions again after indexing")
	}
}

// TestStatusExpiry tests the transient status line
func TestStatusExpiry(t *testing.T) {
	m := newTestModel(t)
	m.status = "something happened"

	updatedModel, _ := m.Update(StatusExpiredMsg{})
	m = updatedModel.(model)

	if m.status != "" {
		t.Error("Status should clear on expiry")
	}
}

// TestViewBeforeReady tests that View is safe before the first window size
func TestViewBeforeReady(t *testing.T) {
	m := newTestModel(t)
	if m.View() == "" {
		t.Error("View should render a placeholder before ready")
	}
}

// TestViewAfterReady tests that the full layout renders
func TestViewAfterReady(t *testing.T) {
	m := newTestModel(t)
	updatedModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updatedModel.(model)

	if m.View() == "" {
		t.Error("View should render content")
	}
}

// TestFormatSize tests byte-count formatting
func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}

	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
