package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docdash/docdash/internal/api"
	"github.com/docdash/docdash/internal/chat"
	"github.com/docdash/docdash/internal/dashboard"
)

// Message types for async operations
type (
	// QueryCompletedMsg carries the outcome of a query exchange.
	QueryCompletedMsg struct {
		ConversationID string
		MessageID      string
		Response       *api.QueryResponse
		Err            error
	}

	// IndexCompletedMsg reports the outcome of an indexing run.
	IndexCompletedMsg struct {
		Err error
	}

	// StatusExpiredMsg clears the transient status line.
	StatusExpiredMsg struct{}
)

// queryCmd issues the remote query off the event loop and re-enters it with a
// QueryCompletedMsg.
func queryCmd(ctx context.Context, client chat.QueryClient, conversationID, messageID, question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Query(ctx, question)
		return QueryCompletedMsg{
			ConversationID: conversationID,
			MessageID:      messageID,
			Response:       resp,
			Err:            err,
		}
	}
}

// indexCmd runs document indexing off the event loop.
func indexCmd(ctx context.Context, dash *dashboard.Orchestrator, files []api.File) tea.Cmd {
	return func() tea.Msg {
		return IndexCompletedMsg{Err: dash.IndexDocuments(ctx, files)}
	}
}

// clearStatusCmd expires the transient status line after a short delay.
func clearStatusCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return StatusExpiredMsg{}
	})
}
