package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

var clearForce bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all documents from the knowledge store",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var showCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Print a document's reconstructed text",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "clear without confirmation")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(showCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := initStore(); err != nil {
		return err
	}

	docs, err := libraryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("  %s  %-30s  %s  %d chunks\n",
			doc.ID, doc.Title, doc.SourceKind, len(doc.ChunkIDs))
	}
	cmd.Println()
	cmd.Printf("%d document(s).\n", len(docs))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := initStore(); err != nil {
		return err
	}

	deleted, err := libraryService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	if !deleted {
		cmd.Printf("No document with id %s.\n", args[0])
		return nil
	}
	cmd.Printf("Deleted %s.\n", args[0])
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if !clearForce {
		return fmt.Errorf("%w: pass --force to clear all documents", domain.ErrInvalidInput)
	}

	if err := initStore(); err != nil {
		return err
	}

	if err := libraryService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}

	cmd.Println("Knowledge store cleared.")
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := initStore(); err != nil {
		return err
	}

	content, err := libraryService.GetContent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting document content: %w", err)
	}

	cmd.Println(content)
	return nil
}
