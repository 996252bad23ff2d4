package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docdash/docdash/internal/chat"
	"github.com/docdash/docdash/internal/dashboard"
	"github.com/docdash/docdash/internal/docs"
	"github.com/docdash/docdash/internal/store"
	"github.com/docdash/docdash/pkg/models"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [conversations|documents|history]",
		Short: "Show conversations, documents, or chat history without TUI",
		Long: `Show persisted state in a non-interactive format.
Without arguments: lists conversations and indexed documents
With "conversations": lists all conversations
With "documents": lists all indexed documents
With "history": prints the active conversation's transcript`,
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, st, client, err := bootstrap()
	if err != nil {
		return err
	}
	defer st.Close()

	registry := chat.NewRegistry(st, cfg.Model)
	registry.LoadOrInit()
	dash := dashboard.New(st, client)

	switch {
	case len(args) == 0:
		if err := showConversations(registry); err != nil {
			return err
		}
		fmt.Println()
		return showDocuments(dash)
	case args[0] == "conversations":
		return showConversations(registry)
	case args[0] == "documents":
		return showDocuments(dash)
	case args[0] == "history":
		return showHistory(st, registry)
	default:
		return fmt.Errorf("unknown topic '%s'. Usage: docdash show [conversations|documents|history]", args[0])
	}
}

func showConversations(registry *chat.Registry) error {
	conversations := registry.List()
	active, _ := registry.Active()

	fmt.Println("Conversations:")
	fmt.Println("==============")
	for i, conv := range conversations {
		marker := " "
		if conv.ID == active.ID {
			marker = "*"
		}
		fmt.Printf("%s %d. %s\n", marker, i+1, conv.Title)
		fmt.Printf("     Created: %s\n", conv.Timestamp)
		fmt.Printf("     Model: %s\n", conv.Model)
	}
	return nil
}

func showDocuments(dash *dashboard.Orchestrator) error {
	state := dash.State()
	if len(state.Documents) == 0 {
		fmt.Println("No documents indexed")
		return nil
	}

	fmt.Println("Indexed documents:")
	fmt.Println("==================")
	for i, doc := range state.Documents {
		fmt.Printf("%d. %s (%d bytes)\n", i+1, doc.Name, doc.Size)
		fmt.Printf("   Indexed: %s\n", doc.IndexedAt)
	}
	fmt.Printf("\nTotal size: %d bytes\n", docs.TotalSize(state.Documents))
	if state.LastMessage != "" {
		fmt.Printf("Last status: %s\n", state.LastMessage)
	}
	return nil
}

func showHistory(st *store.Store, registry *chat.Registry) error {
	active, ok := registry.Active()
	if !ok {
		fmt.Println("No conversations found")
		return nil
	}

	session := chat.NewSession(st, nil, active.ID)
	messages := session.Messages()
	if len(messages) == 0 {
		fmt.Printf("No messages in conversation '%s'\n", active.Title)
		return nil
	}

	fmt.Printf("History for '%s':\n", active.Title)
	fmt.Println("=================")
	for _, msg := range messages {
		fmt.Printf("\n[%s] %s\n", msg.CreatedAt, msg.Role.DisplayName())
		fmt.Println(msg.Content)
		if msg.Status == models.StatusError {
			fmt.Println("(this exchange failed)")
		}
		for _, ref := range msg.References {
			fmt.Printf("  [%s]\n", ref)
		}
	}
	return nil
}
