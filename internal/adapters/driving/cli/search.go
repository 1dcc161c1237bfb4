package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

var (
	searchLimit    int
	searchMinScore float64
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored chunks by semantic similarity",
	Long: `Embeds the query and ranks stored chunks by cosine similarity.
Retrieval only: no answer is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", domain.DefaultMinScore, "minimum similarity score")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := initAI(cmd.Context()); err != nil {
		return err
	}

	results, err := searchService.Search(cmd.Context(), args[0], searchLimit, searchMinScore)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		type hit struct {
			ChunkID    string  `json:"chunk_id"`
			DocumentID string  `json:"document_id"`
			Position   int     `json:"position"`
			Score      float64 `json:"score"`
			Text       string  `json:"text"`
		}
		hits := make([]hit, len(results))
		for i := range results {
			hits[i] = hit{
				ChunkID:    results[i].Chunk.ID,
				DocumentID: results[i].Chunk.DocumentID,
				Position:   results[i].Chunk.Position,
				Score:      results[i].Score,
				Text:       results[i].Chunk.Text,
			}
		}
		return printJSON(cmd, hits)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, results[i].Chunk.ID, results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].Chunk.Text, 120))
		cmd.Println()
	}
	return nil
}

// snippet trims text to a single line of at most n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
