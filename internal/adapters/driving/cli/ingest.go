package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
)

var (
	ingestText    string
	ingestTitle   string
	ingestSummary string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [ref...]",
	Short: "Ingest documents into the knowledge store",
	Long: `Ingest one or more sources into the knowledge store.

A ref is a file path, an http(s) URL, a github://owner/repo[/path][@ref]
reference, or a gdrive://fileID reference. With --text, raw text is
ingested directly and no ref is needed. Multiple refs run as a batch:
failures are reported per source and a unified summary is produced
across the successful ones.`,
	Args: cobra.ArbitraryArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "raw text to ingest instead of a ref")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "title for the ingested document")
	ingestCmd.Flags().StringVar(&ingestSummary, "summary", "", "summary depth: quick, standard, or detailed")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	level, err := domain.ParseSummaryLevel(ingestSummary)
	if err != nil {
		return err
	}

	if ingestText != "" {
		if len(args) > 0 {
			return fmt.Errorf("%w: --text cannot be combined with refs", domain.ErrInvalidInput)
		}
		return ingestRawText(cmd, level)
	}

	switch len(args) {
	case 0:
		return fmt.Errorf("%w: nothing to ingest, give a ref or --text", domain.ErrInvalidInput)
	case 1:
		return ingestOne(cmd, args[0], level)
	default:
		return ingestBatch(cmd, args, level)
	}
}

func ingestRawText(cmd *cobra.Command, level domain.SummaryLevel) error {
	if err := initAI(cmd.Context()); err != nil {
		return err
	}

	doc, err := ingestService.Ingest(cmd.Context(), driving.IngestRequest{
		Title:        ingestTitle,
		Text:         ingestText,
		Kind:         domain.SourceText,
		SummaryLevel: level,
	})
	if err != nil {
		return fmt.Errorf("ingesting text: %w", err)
	}

	printIngested(cmd, doc, level)
	return nil
}

func ingestOne(cmd *cobra.Command, ref string, level domain.SummaryLevel) error {
	if err := initAI(cmd.Context()); err != nil {
		return err
	}

	doc, err := ingestService.IngestSource(cmd.Context(), ref, driving.IngestOptions{
		Title:        ingestTitle,
		SummaryLevel: level,
	})
	if err != nil {
		return err
	}

	printIngested(cmd, doc, level)
	return nil
}

func ingestBatch(cmd *cobra.Command, refs []string, level domain.SummaryLevel) error {
	if err := initAI(cmd.Context()); err != nil {
		return err
	}

	result, err := ingestService.IngestBatch(cmd.Context(), refs, driving.IngestOptions{
		SummaryLevel: level,
	})
	if err != nil {
		return fmt.Errorf("ingesting batch: %w", err)
	}

	for _, item := range result.Items {
		if item.Succeeded() {
			cmd.Printf("  ok    %s (%s)\n", item.Ref, item.DocumentID)
		} else {
			cmd.Printf("  fail  %s: %v\n", item.Ref, item.Err)
		}
	}
	cmd.Println()
	cmd.Printf("Ingested %d of %d sources.\n", result.Succeeded(), len(result.Items))

	if result.UnifiedSummary != "" {
		cmd.Println()
		cmd.Println("Unified summary:")
		cmd.Println(result.UnifiedSummary)
	}
	if result.UnifiedSummaryErr != nil {
		cmd.Printf("Unified summary unavailable: %v\n", result.UnifiedSummaryErr)
	}
	return nil
}

func printIngested(cmd *cobra.Command, doc domain.Document, level domain.SummaryLevel) {
	cmd.Printf("Ingested %q (%s), %d chunks.\n", doc.Title, doc.ID, len(doc.ChunkIDs))
	if summary := doc.Summaries.Get(level); summary != "" {
		cmd.Println()
		cmd.Println(summary)
	}
}
