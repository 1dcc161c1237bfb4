// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Korpus. It exposes ingestion, retrieval, question answering, and store
// management as tools an AI assistant can call.
package mcp

import "errors"

// Errors returned when a required port is not provided.
var (
	ErrMissingIngestor       = errors.New("mcp: ingestor is required")
	ErrMissingAnswerer       = errors.New("mcp: answerer is required")
	ErrMissingSearcher       = errors.New("mcp: searcher is required")
	ErrMissingLibrarian      = errors.New("mcp: librarian is required")
	ErrMissingStatusReporter = errors.New("mcp: status reporter is required")
)
