// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - KnowledgeStore: document, chunk, and embedding persistence
//   - EmbeddingProvider: generates vector embeddings
//   - TextGenerationProvider: generates answers and summaries
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
//   - ContentProvider: fetches text for a source reference. Without a
//     provider for a scheme, only raw-text ingestion works for it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
