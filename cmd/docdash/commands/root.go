package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docdash/docdash/internal/api"
	"github.com/docdash/docdash/internal/config"
	"github.com/docdash/docdash/internal/store"
	"github.com/docdash/docdash/internal/tui"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docdash",
		Short: "Chat with your indexed documents",
		Long:  `docdash is a TUI dashboard for indexing documents and asking questions about them.`,
		RunE:  runTUI,
	}

	rootCmd.AddCommand(NewAskCommand())
	rootCmd.AddCommand(NewIndexCommand())
	rootCmd.AddCommand(NewShowCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, st, client, err := bootstrap()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := tui.Run(cfg, st, client); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// bootstrap loads configuration and opens the shared store and API client.
func bootstrap() (*config.Config, *store.Store, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	st := store.Open(cfg.DataDir)
	client := api.NewClient(cfg.APIBaseURL).WithTimeout(cfg.Timeout())
	return cfg, st, client, nil
}
