package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docdash/docdash/internal/api"
	"github.com/docdash/docdash/internal/dashboard"
)

// NewIndexCommand creates the index command
func NewIndexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "index <file>...",
		Short: "Index one or more files without the TUI",
		Long: `Upload the given files to the indexing service and record them in the
local document list.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIndex,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	_, st, client, err := bootstrap()
	if err != nil {
		return err
	}
	defer st.Close()

	files := make([]api.File, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, api.File{Name: filepath.Base(path), Content: content})
	}

	dash := dashboard.New(st, client)
	if err := dash.IndexDocuments(context.Background(), files); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	state := dash.State()
	fmt.Printf("Indexed %d file(s)\n", len(files))
	if state.LastMessage != "" {
		fmt.Println(state.LastMessage)
	}
	return nil
}
