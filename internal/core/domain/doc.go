// Package domain defines the core business entities for Korpus.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: an ingested document with metadata and summaries
//   - Chunk: the unit of embedding and retrieval within a document
//   - RawContent: extracted text handed to the ingestion pipeline
//   - Answer: a generated answer with citations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
