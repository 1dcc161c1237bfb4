package mcp

import (
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ingest runs the ingestion pipeline.
	Ingest driving.Ingestor

	// Answer answers questions over the stored documents.
	Answer driving.Answerer

	// Search exposes retrieval without generation.
	Search driving.Searcher

	// Library manages the stored documents.
	Library driving.Librarian

	// Status reports the store's aggregate state.
	Status driving.StatusReporter
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestor
	}
	if p.Answer == nil {
		return ErrMissingAnswerer
	}
	if p.Search == nil {
		return ErrMissingSearcher
	}
	if p.Library == nil {
		return ErrMissingLibrarian
	}
	if p.Status == nil {
		return ErrMissingStatusReporter
	}
	return nil
}
