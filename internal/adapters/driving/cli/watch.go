package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	contentfile "github.com/korpus-labs/korpus-cli/internal/adapters/driven/content/file"
	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/services"
)

var watchSummary string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and keep it ingested",
	Long: `Watches a directory for changes. New and modified text files are
(re-)ingested; removed files are deleted from the knowledge store.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSummary, "summary", "", "summary depth: quick, standard, or detailed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	level, err := domain.ParseSummaryLevel(watchSummary)
	if err != nil {
		return err
	}

	if err := initAI(cmd.Context()); err != nil {
		return err
	}

	watcher, err := contentfile.NewWatcher(args[0])
	if err != nil {
		return fmt.Errorf("watching %s: %w", args[0], err)
	}
	defer watcher.Close() //nolint:errcheck

	go func() {
		if err := watcher.Run(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher stopped: %v\n", err)
		}
	}()

	cmd.Printf("Watching %s. Press Ctrl+C to stop.\n", args[0])

	loop := services.NewWatchService(ingestService, knowledgeStore, level)
	return loop.Run(cmd.Context(), watcher.Changes(), watcher.Errors())
}
