package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrDuplicateDocument indicates a document id already exists.
	// Re-ingestion requires an explicit delete first; there is no upsert.
	ErrDuplicateDocument = errors.New("document already exists")

	// ErrUnknownDocument indicates a referenced document does not exist.
	ErrUnknownDocument = errors.New("unknown document")

	// ErrDimensionMismatch indicates an embedding's length disagrees with
	// the store's established embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreCorruption indicates a snapshot could not be read.
	// Callers fall back to an empty store rather than crash.
	ErrStoreCorruption = errors.New("store corruption")

	// ErrEmbeddingFailed indicates the embedding capability failed.
	// Retried a bounded number of times before surfacing.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed indicates the text-generation capability failed.
	// Retried a bounded number of times before surfacing.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedSource indicates no content provider handles the
	// source reference.
	ErrUnsupportedSource = errors.New("unsupported source")
)

// IngestionError attributes an ingestion failure to a specific source.
// Within a batch it is recorded per item and never aborts the batch.
type IngestionError struct {
	// SourceRef is the source the failure is attributed to.
	SourceRef string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *IngestionError) Error() string {
	if e.SourceRef == "" {
		return fmt.Sprintf("ingestion failed: %v", e.Err)
	}
	return fmt.Sprintf("ingestion of %q failed: %v", e.SourceRef, e.Err)
}

// Unwrap returns the underlying failure.
func (e *IngestionError) Unwrap() error {
	return e.Err
}

// NewIngestionError wraps err with source attribution.
func NewIngestionError(sourceRef string, err error) *IngestionError {
	return &IngestionError{SourceRef: sourceRef, Err: err}
}

// IsRetryable reports whether an error class may succeed on retry.
// Only external capability failures qualify; caller misuse and
// cancellation never do.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrEmbeddingFailed) || errors.Is(err, ErrGenerationFailed)
}
