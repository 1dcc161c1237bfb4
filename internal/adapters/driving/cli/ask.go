package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

var (
	askTopK          int
	askMinScore      float64
	askContextTokens int
	askJSON          bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the stored documents",
	Long: `Answers a natural-language question by retrieving the most relevant
chunks from the knowledge store and generating an answer with
citations. When nothing relevant is stored, says so instead of
guessing.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK, "maximum number of chunks to retrieve")
	askCmd.Flags().Float64Var(&askMinScore, "min-score", domain.DefaultMinScore, "minimum similarity score")
	askCmd.Flags().IntVar(&askContextTokens, "context-tokens", domain.DefaultContextTokens, "context token budget")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := initAI(cmd.Context()); err != nil {
		return err
	}

	answer, err := answerService.Answer(cmd.Context(), args[0], domain.AskOptions{
		TopK:             askTopK,
		MinScore:         &askMinScore,
		MaxContextTokens: askContextTokens,
	})
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if askJSON {
		return printJSON(cmd, struct {
			Answer           string   `json:"answer"`
			CitedDocumentIDs []string `json:"cited_document_ids,omitempty"`
			NoContext        bool     `json:"no_context"`
		}{answer.Text, answer.CitedDocumentIDs, answer.NoContext})
	}

	cmd.Println(answer.Text)
	if len(answer.CitedDocumentIDs) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, id := range answer.CitedDocumentIDs {
			cmd.Printf("  %s\n", id)
		}
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
