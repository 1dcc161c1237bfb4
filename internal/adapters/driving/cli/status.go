package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show knowledge store status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := initStore(); err != nil {
		return err
	}

	status, err := statusService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	if statusJSON {
		type docLine struct {
			ID         string `json:"id"`
			Title      string `json:"title"`
			SourceKind string `json:"source_kind"`
			ChunkCount int    `json:"chunk_count"`
			HasSummary bool   `json:"has_summary"`
		}
		lines := make([]docLine, len(status.Documents))
		for i, doc := range status.Documents {
			lines[i] = docLine{
				ID:         doc.ID,
				Title:      doc.Title,
				SourceKind: doc.SourceKind.String(),
				ChunkCount: doc.ChunkCount,
				HasSummary: doc.HasSummary,
			}
		}
		return printJSON(cmd, struct {
			DocumentCount int       `json:"document_count"`
			ChunkCount    int       `json:"chunk_count"`
			EmbeddingDim  int       `json:"embedding_dim"`
			StorageBytes  int64     `json:"storage_bytes"`
			Backend       string    `json:"backend"`
			Documents     []docLine `json:"documents"`
		}{
			status.DocumentCount, status.ChunkCount, status.EmbeddingDim,
			status.StorageBytes, status.Backend, lines,
		})
	}

	cmd.Println("Knowledge Store")
	cmd.Println("===============")
	cmd.Printf("  Backend:    %s\n", status.Backend)
	cmd.Printf("  Documents:  %d\n", status.DocumentCount)
	cmd.Printf("  Chunks:     %d\n", status.ChunkCount)
	if status.EmbeddingDim > 0 {
		cmd.Printf("  Embedding:  %d dimensions\n", status.EmbeddingDim)
	} else {
		cmd.Printf("  Embedding:  (not established)\n")
	}
	cmd.Printf("  Storage:    %s\n", formatBytes(status.StorageBytes))

	if len(status.Documents) > 0 {
		cmd.Println()
		for _, doc := range status.Documents {
			summary := " "
			if doc.HasSummary {
				summary = "s"
			}
			cmd.Printf("  [%s] %s  %-30s  %d chunks\n", summary, doc.ID, doc.Title, doc.ChunkCount)
		}
	}
	return nil
}

// formatBytes renders a byte count in a human-readable unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
