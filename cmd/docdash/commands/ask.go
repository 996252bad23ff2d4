package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docdash/docdash/internal/chat"
	"github.com/docdash/docdash/pkg/models"
)

// NewAskCommand creates the ask command
func NewAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question without the TUI",
		Long: `Ask a single question against the indexed documents and print the answer.
The exchange is appended to the active conversation's history.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, st, client, err := bootstrap()
	if err != nil {
		return err
	}
	defer st.Close()

	registry := chat.NewRegistry(st, cfg.Model)
	registry.LoadOrInit()

	active, ok := registry.Active()
	if !ok {
		return fmt.Errorf("no active conversation")
	}

	session := chat.NewSession(st, client, active.ID)
	question := strings.Join(args, " ")
	if !session.Send(context.Background(), question) {
		return fmt.Errorf("question rejected: a question must be non-empty")
	}

	messages := session.Messages()
	last := messages[len(messages)-1]
	if last.Status == models.StatusError {
		return fmt.Errorf("query failed: %s", last.Content)
	}

	fmt.Println(last.Content)
	if len(last.References) > 0 {
		fmt.Println("\nReferences:")
		for _, ref := range last.References {
			fmt.Printf("  - %s\n", ref)
		}
	}
	return nil
}
