// Package cli provides the cobra command tree for the korpus binary.
// Commands are thin: they parse flags, build or reuse the wired
// services, and render results. All behaviour lives in the core.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/ai"
	configfile "github.com/korpus-labs/korpus-cli/internal/adapters/driven/config/file"
	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/content"
	contentfile "github.com/korpus-labs/korpus-cli/internal/adapters/driven/content/file"
	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/content/gdrive"
	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/content/github"
	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/content/web"
	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/storage/snapshot"
	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/storage/sqlite"
	"github.com/korpus-labs/korpus-cli/internal/chunker"
	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
	"github.com/korpus-labs/korpus-cli/internal/core/services"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose enables debug logging across all commands.
var verbose bool

// Wired services. Built on first use by initStore/initAI; tests
// replace them directly.
var (
	configStore    driven.ConfigStore
	settings       domain.Settings
	knowledgeStore driven.KnowledgeStore
	ingestService  driving.Ingestor
	answerService  driving.Answerer
	searchService  driving.Searcher
	libraryService driving.Librarian
	statusService  driving.StatusReporter
)

var rootCmd = &cobra.Command{
	Use:   "korpus",
	Short: "Local RAG knowledge store with semantic retrieval",
	Long: `Korpus ingests documents (files, raw text, URLs, GitHub and Drive
sources), indexes them for semantic search, and answers questions
from the stored content with citations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		// Missing .env files are the normal case.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// initStore loads configuration and opens the knowledge store plus the
// services that need no AI provider. Idempotent; tests that preinstall
// services skip it entirely.
func initStore() error {
	if libraryService != nil && statusService != nil {
		return nil
	}

	if configStore == nil {
		store, err := configfile.NewConfigStore("")
		if err != nil {
			return fmt.Errorf("opening config store: %w", err)
		}
		configStore = store
	}

	loaded, err := configfile.LoadSettings(configStore)
	if err != nil {
		return err
	}
	settings = loaded

	if knowledgeStore == nil {
		store, err := openKnowledgeStore(settings)
		if err != nil {
			return fmt.Errorf("opening knowledge store: %w", err)
		}
		knowledgeStore = store
	}

	ch := newChunker(settings)
	libraryService = services.NewLibraryService(knowledgeStore, ch)
	statusService = services.NewStatusService(knowledgeStore, settings.Storage.Backend.String())
	return nil
}

// initAI builds the AI-backed services: ingestion, retrieval, and
// question answering. Both providers are validated with a ping so a
// misconfiguration fails fast instead of mid-pipeline.
func initAI(ctx context.Context) error {
	if ingestService != nil && answerService != nil && searchService != nil {
		return nil
	}
	if err := initStore(); err != nil {
		return err
	}

	embedder, err := ai.CreateAndValidateEmbeddingProvider(ctx, settings.Embedding)
	if err != nil {
		return err
	}
	generator, err := ai.CreateAndValidateGenerationProvider(ctx, settings.Generation)
	if err != nil {
		return err
	}

	ch := newChunker(settings)
	resolver := content.NewResolver(content.Config{
		File:   contentfile.NewProvider(contentfile.Config{}),
		Web:    web.NewProvider(web.Config{}),
		GitHub: github.NewProvider(github.Config{Token: settings.Sources.GitHubToken}),
		GDrive: gdrive.NewProvider(gdrive.Config{AccessToken: settings.Sources.DriveToken}),
	})

	summaries := services.NewSummaryService(generator)
	retriever := services.NewRetrievalService(knowledgeStore, embedder)

	ingestService = services.NewIngestService(knowledgeStore, embedder, summaries, resolver, ch)
	answerService = services.NewQAService(knowledgeStore, retriever, generator)
	searchService = retriever
	return nil
}

// openKnowledgeStore opens the configured storage backend.
func openKnowledgeStore(s domain.Settings) (driven.KnowledgeStore, error) {
	dataDir := s.Storage.Dir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dataDir = filepath.Join(home, ".korpus", "data")
	}

	switch s.Storage.Backend {
	case domain.StorageSQLite:
		return sqlite.New(dataDir)
	case domain.StorageSnapshot:
		return snapshot.New(dataDir)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, s.Storage.Backend)
	}
}

func newChunker(s domain.Settings) *chunker.Chunker {
	return chunker.New(
		chunker.WithMaxSize(s.Chunking.MaxSize),
		chunker.WithOverlap(s.Chunking.Overlap),
	)
}
